package arbiter_test

import (
	"testing"

	"shitbrix/internal/arbiter"
	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/state"
)

// TestColorSupplierDeterministic verifies two suppliers seeded identically
// produce the identical sequence of colors — required for replay fidelity.
func TestColorSupplierDeterministic(t *testing.T) {
	a := arbiter.NewColorSupplier(42)
	b := arbiter.NewColorSupplier(42)

	for i := 0; i < 20; i++ {
		if a.NextSpawn() != b.NextSpawn() {
			t.Fatalf("sequences diverged at draw %d", i)
		}
	}
}

// TestOnStarveSpawnsAtTriggerTime verifies a Starve event journals a
// SpawnBlockInput at the triggering tick's game_time directly (no +1),
// matching the source's fire(Starve) behavior.
func TestOnStarveSpawnsAtTriggerTime(t *testing.T) {
	j := journal.New(journal.DefaultLimits())
	s := state.New(2)
	a := arbiter.New(1, j, s)

	a.Handle(hub.Event{Kind: hub.Starve, Trivia: hub.Trivia{GameTime: 50, Player: 0}})

	inputs := j.DiscoverInputs(0, 1000)
	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(inputs))
	}
	spawn, ok := inputs[0].(state.SpawnBlockInput)
	if !ok {
		t.Fatal("expected a SpawnBlockInput")
	}
	if spawn.GameTime != 50 {
		t.Errorf("game_time = %d, want 50 (no +1 offset)", spawn.GameTime)
	}
	if spawn.Player != 1 {
		t.Errorf("spawned on player %d, want opponent 1", spawn.Player)
	}
}

// TestOnMatchNoDropAtComboThree verifies a combo of exactly 3 drops no
// garbage (counter := combo-3 == 0).
func TestOnMatchNoDropAtComboThree(t *testing.T) {
	j := journal.New(journal.DefaultLimits())
	s := state.New(2)
	a := arbiter.New(1, j, s)

	a.Handle(hub.Event{Kind: hub.Match, Trivia: hub.Trivia{GameTime: 10, Player: 0}, Combo: 3})

	if len(j.DiscoverInputs(0, 1000)) != 0 {
		t.Fatal("a combo of 3 should drop no garbage")
	}
}

// TestOnChainSpawnsAtTriggerTimePlusOne verifies a Chain event journals a
// SpawnGarbageInput at game_time+1, unlike Starve.
func TestOnChainSpawnsAtTriggerTimePlusOne(t *testing.T) {
	j := journal.New(journal.DefaultLimits())
	s := state.New(2)
	a := arbiter.New(1, j, s)

	a.Handle(hub.Event{Kind: hub.Chain, Trivia: hub.Trivia{GameTime: 10, Player: 0}, Counter: 2})

	inputs := j.DiscoverInputs(0, 1000)
	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(inputs))
	}
	g, ok := inputs[0].(state.SpawnGarbageInput)
	if !ok {
		t.Fatal("expected a SpawnGarbageInput")
	}
	if g.GameTime != 11 {
		t.Errorf("game_time = %d, want 11", g.GameTime)
	}
	if g.Rows != 2 {
		t.Errorf("rows = %d, want 2", g.Rows)
	}
}
