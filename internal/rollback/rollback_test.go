package rollback_test

import (
	"testing"

	"shitbrix/internal/coord"
	"shitbrix/internal/director"
	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/rollback"
	"shitbrix/internal/state"
)

func newRules() rollback.Rules {
	return rollback.Rules{Director: director.New(hub.New())}
}

// TestSynchronizeAdvancesGameTime verifies Synchronize drives GameTime up
// to the target even with no inputs pending.
func TestSynchronizeAdvancesGameTime(t *testing.T) {
	s := state.New(2)
	for _, p := range s.Pits {
		p.SetFloor(30)
	}
	j := journal.New(journal.DefaultLimits())

	s, loser := rollback.Synchronize(s, 10, j, newRules())

	if loser >= 0 {
		t.Fatalf("unexpected loser %d", loser)
	}
	if s.GameTime != 10 {
		t.Errorf("game_time = %d, want 10", s.GameTime)
	}
}

// TestSynchronizeAppliesJournaledCursorMove verifies a journaled
// PlayerInput is applied exactly at its own game_time during replay.
func TestSynchronizeAppliesJournaledCursorMove(t *testing.T) {
	s := state.New(2)
	for _, p := range s.Pits {
		p.SetFloor(30)
	}
	j := journal.New(journal.DefaultLimits())
	j.AddInput(state.PlayerInput{GameTime: 3, Player: 0, Button: state.ButtonRight, Action: state.Press})

	startCol := s.Pits[0].Cursor.RC.C
	s, _ = rollback.Synchronize(s, 5, j, newRules())

	if s.Pits[0].Cursor.RC.C != startCol+1 {
		t.Errorf("cursor column = %d, want %d", s.Pits[0].Cursor.RC.C, startCol+1)
	}
}

// TestSynchronizeRewindsOnLateArrivingInput verifies that discovering an
// input earlier than the current game_time rewinds to the last checkpoint
// at or before it and replays forward, rather than ignoring it.
func TestSynchronizeRewindsOnLateArrivingInput(t *testing.T) {
	s := state.New(2)
	for _, p := range s.Pits {
		p.SetFloor(30)
	}
	j := journal.New(journal.DefaultLimits())
	j.AddCheckpoint(s.Clone()) // checkpoint at game_time 0

	s, _ = rollback.Synchronize(s, 50, j, newRules())

	// A late-arriving input lands before the current game_time but after
	// the seeded checkpoint.
	j.AddInput(state.PlayerInput{GameTime: 3, Player: 0, Button: state.ButtonRight, Action: state.Press})

	target := s.GameTime + 2
	s, _ = rollback.Synchronize(s, target, j, newRules())

	if s.GameTime != target {
		t.Errorf("game_time = %d, want %d", s.GameTime, target)
	}
	if s.Pits[0].Cursor.RC.C == 0 {
		t.Error("expected the rewound-and-replayed input to have moved the cursor")
	}
}

// TestLateArrivingInputRejoinsAFreshRunWithTheSameInputs verifies that
// discovering a previously-missing input after reaching a target tick and
// re-synchronizing to the same target produces the same pit contents as a
// run that had every input from the start.
func TestLateArrivingInputRejoinsAFreshRunWithTheSameInputs(t *testing.T) {
	swap := func(gameTime int64) state.PlayerInput {
		return state.PlayerInput{GameTime: gameTime, Player: 0, Button: state.ButtonSwap, Action: state.Press}
	}

	newSeeded := func() (*state.GameState, *journal.Journal) {
		s := state.New(2)
		for _, p := range s.Pits {
			p.SetFloor(30)
		}
		j := journal.New(journal.DefaultLimits())
		j.AddCheckpoint(s.Clone())
		return s, j
	}

	// Run A: reach tick 200 with swap@50 and swap@100, then discover a
	// late swap@75 and re-synchronize to the same target.
	sA, jA := newSeeded()
	jA.AddInput(swap(50))
	jA.AddInput(swap(100))
	sA, _ = rollback.Synchronize(sA, 200, jA, newRules())

	jA.AddInput(swap(75))
	sA, _ = rollback.Synchronize(sA, 200, jA, newRules())

	// Run B: a fresh run with all three inputs present from the start.
	sB, jB := newSeeded()
	jB.AddInput(swap(50))
	jB.AddInput(swap(75))
	jB.AddInput(swap(100))
	sB, _ = rollback.Synchronize(sB, 200, jB, newRules())

	if sA.GameTime != sB.GameTime {
		t.Fatalf("game_time A=%d B=%d, want equal", sA.GameTime, sB.GameTime)
	}
	if sA.Pits[0].Cursor.RC != sB.Pits[0].Cursor.RC {
		t.Errorf("cursor A=%v B=%v, want equal", sA.Pits[0].Cursor.RC, sB.Pits[0].Cursor.RC)
	}

	contentsA, contentsB := sA.Pits[0].Contents(), sB.Pits[0].Contents()
	if len(contentsA) != len(contentsB) {
		t.Fatalf("pit 0 contents length A=%d B=%d, want equal", len(contentsA), len(contentsB))
	}
	for i := range contentsA {
		if contentsA[i].RC != contentsB[i].RC || contentsA[i].Color != contentsB[i].Color || contentsA[i].State != contentsB[i].State {
			t.Errorf("content %d: A=%+v B=%+v, want equal", i, contentsA[i], contentsB[i])
		}
	}
}

// TestApplyInputSpawnGarbageDirect verifies ApplyInput places a
// SpawnGarbageInput directly into the target pit.
func TestApplyInputSpawnGarbageDirect(t *testing.T) {
	s := state.New(2)
	for _, p := range s.Pits {
		p.SetFloor(30)
	}
	d := director.New(hub.New())

	rollback.ApplyInput(s, d, state.SpawnGarbageInput{
		GameTime: 1, Player: 0, Rows: 1, Columns: 2,
		RC: coord.RowCol{R: 0, C: 0}, Loot: []coord.Color{coord.Red, coord.Blue},
	})

	g := s.Pits[0].At(coord.RowCol{R: 0, C: 0})
	if g == nil || !g.IsGarbage() {
		t.Fatal("expected garbage spawned at (0,0)")
	}
}
