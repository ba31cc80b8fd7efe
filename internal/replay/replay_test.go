package replay_test

import (
	"bytes"
	"reflect"
	"testing"

	"shitbrix/internal/replay"
	"shitbrix/internal/state"
)

// TestWriterDriveRoundTrip verifies a sequence of OnStart/OnInput/OnEnd
// calls serialized by Writer reconstitutes identically when driven back
// through a Recorder.
func TestWriterDriveRoundTrip(t *testing.T) {
	meta := state.Meta{Players: 2, Seed: 12345, Winner: state.Player0Wins}
	inputs := []state.Input{
		state.PlayerInput{GameTime: 1, Player: 0, Button: state.ButtonSwap, Action: state.Press},
		state.PlayerInput{GameTime: 2, Player: 1, Button: state.ButtonDown, Action: state.Release},
	}

	var buf bytes.Buffer
	w := replay.NewWriter(&buf)
	w.OnStart(meta)
	for _, in := range inputs {
		w.OnInput(in)
	}
	w.OnEnd()

	rec := &replay.Recorder{}
	if err := replay.Drive(&buf, rec); err != nil {
		t.Fatalf("Drive: %v", err)
	}

	if rec.Meta.Players != meta.Players || rec.Meta.Seed != meta.Seed {
		t.Errorf("meta = %+v, want players/seed from %+v", rec.Meta, meta)
	}
	if !rec.Ended {
		t.Error("expected Ended = true")
	}
	if len(rec.Inputs) != len(inputs) {
		t.Fatalf("got %d inputs, want %d", len(rec.Inputs), len(inputs))
	}
	for i, in := range inputs {
		if !reflect.DeepEqual(rec.Inputs[i], in) {
			t.Errorf("input %d = %+v, want %+v", i, rec.Inputs[i], in)
		}
	}
}

// TestDriveStopsOnUnknownLineKind verifies an unrecognized leading token
// is a parse error.
func TestDriveStopsOnUnknownLineKind(t *testing.T) {
	r := bytes.NewBufferString("bogus line here\n")
	if err := replay.Drive(r, &replay.Recorder{}); err == nil {
		t.Fatal("expected an error for an unknown line kind")
	}
}

// TestDriveRejectsMalformedMetaLine verifies a meta line missing fields
// is a parse error, not silently ignored.
func TestDriveRejectsMalformedMetaLine(t *testing.T) {
	r := bytes.NewBufferString("meta 2 99\n")
	if err := replay.Drive(r, &replay.Recorder{}); err == nil {
		t.Fatal("expected an error for a short meta line")
	}
}

// TestOnSetIsDrivenBack verifies a "set" line reaches the sink's OnSet.
func TestOnSetIsDrivenBack(t *testing.T) {
	var buf bytes.Buffer
	w := replay.NewWriter(&buf)
	w.OnSet("difficulty", "hard")

	var gotKey, gotValue string
	sink := &recordingSink{onSet: func(k, v string) { gotKey, gotValue = k, v }}
	if err := replay.Drive(&buf, sink); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if gotKey != "difficulty" || gotValue != "hard" {
		t.Errorf("got (%q, %q), want (%q, %q)", gotKey, gotValue, "difficulty", "hard")
	}
}

type recordingSink struct {
	onSet func(key, value string)
}

func (s *recordingSink) OnSet(key, value string) { s.onSet(key, value) }
func (s *recordingSink) OnStart(state.Meta)      {}
func (s *recordingSink) OnInput(state.Input)     {}
func (s *recordingSink) OnEnd()                  {}
