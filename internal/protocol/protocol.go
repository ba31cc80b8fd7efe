// Package protocol implements the ASCII line wire codec (spec.md §4.8):
// one message per line, `<sender> <recipient> <TYPE> <payload>`, with
// Input payloads in a further space-separated sub-format. Grounded on the
// teacher's internal/ipc/protocol.go for the error-wrapping convention
// (fmt.Errorf("...: %w", err)) though the framing itself is plain text
// here rather than the teacher's length-prefixed gob.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"shitbrix/internal/coord"
	"shitbrix/internal/state"
)

// Type is the message kind, the third field of every line.
type Type string

const (
	TypeMETA    Type = "META"
	TypePLAYER  Type = "PLAYER"
	TypeINPUT   Type = "INPUT"
	TypeSPEED   Type = "SPEED"
	TypeSYNC    Type = "SYNC"
	TypeCLIENTS Type = "CLIENTS"
	TypeSTART   Type = "START"
	TypeBYE     Type = "BYE"
	TypeOFFER   Type = "OFFER"
	TypeREMOVE  Type = "REMOVE"
	TypeJOIN    Type = "JOIN"
	TypeLIST    Type = "LIST"
	TypeCHECKIN Type = "CHECKIN"
	TypeRETRACT Type = "RETRACT"
	TypeGAMEEND Type = "GAMEEND"
)

// Message is one parsed wire line. SessionID is never part of the wire
// encoding (spec.md §4.8 fixes the line format at four fields); it is
// stamped by the transport from the connection the line arrived on,
// resolving spec.md §9's note that in-flight messages otherwise "carry
// no session id".
type Message struct {
	Sender    string
	Recipient string
	Type      Type
	Payload   string
	SessionID string
}

// Format renders m as a single wire line, without a trailing newline.
func Format(m Message) string {
	return fmt.Sprintf("%s %s %s %s", m.Sender, m.Recipient, m.Type, m.Payload)
}

// Parse reads a wire line into a Message. A line with fewer than three
// space-separated fields is a parse error.
func Parse(line string) (Message, error) {
	fields := strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 4)
	if len(fields) < 3 {
		return Message{}, fmt.Errorf("protocol: malformed message line %q", line)
	}
	m := Message{Sender: fields[0], Recipient: fields[1], Type: Type(fields[2])}
	if len(fields) == 4 {
		m.Payload = fields[3]
	}
	return m, nil
}

// Decoder wraps Parse with a token-bucket rate limit, so a peer sending a
// flood of malformed lines can't burn unbounded CPU re-parsing them
// (spec.md §7's "parse/replay error... logged and dropped" combined with
// the teacher's per-connection rate.Limiter usage).
type Decoder struct {
	limiter *rate.Limiter
}

// NewDecoder creates a Decoder allowing linesPerSecond lines per second,
// with bursts of up to burst lines.
func NewDecoder(linesPerSecond float64, burst int) *Decoder {
	return &Decoder{limiter: rate.NewLimiter(rate.Limit(linesPerSecond), burst)}
}

// Decode parses line, subject to the rate limit.
func (d *Decoder) Decode(line string) (Message, error) {
	if !d.limiter.Allow() {
		return Message{}, fmt.Errorf("protocol: rate limit exceeded")
	}
	return Parse(line)
}

// FormatInput serializes an Input as its payload sub-format.
func FormatInput(in state.Input) (string, error) {
	switch v := in.(type) {
	case state.PlayerInput:
		return fmt.Sprintf("PlayerInput %d %d %s %s", v.GameTime, v.Player, v.Button, v.Action), nil

	case state.SpawnBlockInput:
		parts := []string{"SpawnBlockInput", strconv.FormatInt(v.GameTime, 10), strconv.Itoa(v.Player), strconv.Itoa(v.Row)}
		for _, c := range v.Colors {
			parts = append(parts, c.String())
		}
		return strings.Join(parts, " "), nil

	case state.SpawnGarbageInput:
		if len(v.Loot) != v.Rows*v.Columns {
			return "", fmt.Errorf("protocol: loot cardinality %d != %d*%d", len(v.Loot), v.Rows, v.Columns)
		}
		parts := []string{
			"SpawnGarbageInput", strconv.FormatInt(v.GameTime, 10), strconv.Itoa(v.Player),
			strconv.Itoa(v.Rows), strconv.Itoa(v.Columns), strconv.Itoa(v.RC.R), strconv.Itoa(v.RC.C),
		}
		for _, c := range v.Loot {
			parts = append(parts, c.String())
		}
		return strings.Join(parts, " "), nil

	default:
		return "", fmt.Errorf("protocol: unknown input type %T", in)
	}
}

func parseButton(s string) (state.Button, error) {
	switch s {
	case "left":
		return state.ButtonLeft, nil
	case "right":
		return state.ButtonRight, nil
	case "up":
		return state.ButtonUp, nil
	case "down":
		return state.ButtonDown, nil
	case "swap":
		return state.ButtonSwap, nil
	case "raise":
		return state.ButtonRaise, nil
	default:
		return 0, fmt.Errorf("protocol: unknown button %q", s)
	}
}

func parseAction(s string) (state.Action, error) {
	switch s {
	case "press":
		return state.Press, nil
	case "release":
		return state.Release, nil
	default:
		return 0, fmt.Errorf("protocol: unknown action %q", s)
	}
}

// ParseInput parses an Input payload produced by FormatInput. Every
// payload round-trips exactly: ParseInput(FormatInput(x)) == x.
func ParseInput(payload string) (state.Input, error) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return nil, fmt.Errorf("protocol: empty input payload")
	}

	switch fields[0] {
	case "PlayerInput":
		if len(fields) != 5 {
			return nil, fmt.Errorf("protocol: malformed PlayerInput %q", payload)
		}
		gameTime, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("protocol: PlayerInput game_time: %w", err)
		}
		player, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("protocol: PlayerInput player: %w", err)
		}
		button, err := parseButton(fields[3])
		if err != nil {
			return nil, err
		}
		action, err := parseAction(fields[4])
		if err != nil {
			return nil, err
		}
		return state.PlayerInput{GameTime: gameTime, Player: player, Button: button, Action: action}, nil

	case "SpawnBlockInput":
		if len(fields) != 4+coord.PitCols {
			return nil, fmt.Errorf("protocol: malformed SpawnBlockInput %q", payload)
		}
		gameTime, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnBlockInput game_time: %w", err)
		}
		player, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnBlockInput player: %w", err)
		}
		row, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnBlockInput row: %w", err)
		}
		var colors [coord.PitCols]coord.Color
		for i := 0; i < coord.PitCols; i++ {
			c, err := coord.ParseColor(fields[4+i])
			if err != nil {
				return nil, fmt.Errorf("protocol: SpawnBlockInput color %d: %w", i, err)
			}
			colors[i] = c
		}
		return state.SpawnBlockInput{GameTime: gameTime, Player: player, Row: row, Colors: colors}, nil

	case "SpawnGarbageInput":
		if len(fields) < 7 {
			return nil, fmt.Errorf("protocol: malformed SpawnGarbageInput %q", payload)
		}
		gameTime, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput game_time: %w", err)
		}
		player, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput player: %w", err)
		}
		rows, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput rows: %w", err)
		}
		cols, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput columns: %w", err)
		}
		rcR, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput rc.r: %w", err)
		}
		rcC, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput rc.c: %w", err)
		}
		lootFields := fields[7:]
		if len(lootFields) != rows*cols {
			return nil, fmt.Errorf("protocol: SpawnGarbageInput loot cardinality %d != %d*%d", len(lootFields), rows, cols)
		}
		loot := make([]coord.Color, len(lootFields))
		for i, f := range lootFields {
			c, err := coord.ParseColor(f)
			if err != nil {
				return nil, fmt.Errorf("protocol: SpawnGarbageInput loot %d: %w", i, err)
			}
			loot[i] = c
		}
		return state.SpawnGarbageInput{
			GameTime: gameTime, Player: player, Rows: rows, Columns: cols,
			RC: coord.RowCol{R: rcR, C: rcC}, Loot: loot,
		}, nil

	default:
		return nil, fmt.Errorf("protocol: unknown input kind %q", fields[0])
	}
}
