// Package replay implements the text replay format (spec.md §6): one
// input per line prefixed "input", a "meta" line, and "start"/"end"
// sentinels. The encoder is push-based rather than a flat reader/writer
// pair, per _examples/original_source/src/replay.cpp's IReplaySink: a
// Sink interface with OnSet/OnStart/OnInput/OnEnd so the same events can
// target a file, a network peer, or an in-memory recorder under test.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shitbrix/internal/protocol"
	"shitbrix/internal/state"
)

// Sink receives replay events in emission order.
type Sink interface {
	OnSet(key, value string)
	OnStart(meta state.Meta)
	OnInput(in state.Input)
	OnEnd()
}

// Writer is a Sink that serializes events to w in spec.md §6's line
// format.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w as a replay Sink.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (rw *Writer) OnSet(key, value string) {
	fmt.Fprintf(rw.w, "set %s %s\n", key, value)
}

func (rw *Writer) OnStart(meta state.Meta) {
	fmt.Fprintf(rw.w, "meta %d %d %t %d\n", meta.Players, meta.Seed, true, int(meta.Winner))
	fmt.Fprintln(rw.w, "start")
}

func (rw *Writer) OnInput(in state.Input) {
	payload, err := protocol.FormatInput(in)
	if err != nil {
		return
	}
	fmt.Fprintf(rw.w, "input %s\n", payload)
}

func (rw *Writer) OnEnd() {
	fmt.Fprintln(rw.w, "end")
}

// Recorder is an in-memory Sink, useful in tests and as the sink behind
// AuditLog-style post-hoc inspection.
type Recorder struct {
	Meta   state.Meta
	Inputs []state.Input
	Ended  bool
}

func (r *Recorder) OnSet(key, value string) {}
func (r *Recorder) OnStart(meta state.Meta) { r.Meta = meta }
func (r *Recorder) OnInput(in state.Input)  { r.Inputs = append(r.Inputs, in) }
func (r *Recorder) OnEnd()                  { r.Ended = true }

// Drive reads a replay file from r line by line, calling sink's methods
// in order. Returns a parse error on the first malformed line (the
// offending replay is abandoned, per spec.md §7's parse-error handling).
func Drive(r io.Reader, sink Sink) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "meta":
			meta, err := parseMeta(fields)
			if err != nil {
				return err
			}
			sink.OnStart(meta)
		case "start", "end":
			if fields[0] == "end" {
				sink.OnEnd()
			}
		case "set":
			if len(fields) != 3 {
				return fmt.Errorf("replay: malformed set line %q", line)
			}
			sink.OnSet(fields[1], fields[2])
		case "input":
			payload := strings.TrimPrefix(line, "input ")
			in, err := protocol.ParseInput(payload)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			sink.OnInput(in)
		default:
			return fmt.Errorf("replay: unknown line kind %q", fields[0])
		}
	}
	return scanner.Err()
}

func parseMeta(fields []string) (state.Meta, error) {
	if len(fields) != 5 {
		return state.Meta{}, fmt.Errorf("replay: malformed meta line")
	}
	players, err := strconv.Atoi(fields[1])
	if err != nil {
		return state.Meta{}, fmt.Errorf("replay: meta players: %w", err)
	}
	seed, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return state.Meta{}, fmt.Errorf("replay: meta seed: %w", err)
	}
	winner, err := strconv.Atoi(fields[4])
	if err != nil {
		return state.Meta{}, fmt.Errorf("replay: meta winner: %w", err)
	}
	return state.Meta{Players: players, Seed: seed, Winner: state.Winner(winner)}, nil
}
