// Package rollback implements ApplyInput and Synchronize: the bridge
// between a recorded Input and a mutation of GameState, and the
// rewind-then-replay-forward engine that keeps every participant's
// simulation a pure function of (meta, player inputs) regardless of
// network reordering.
//
// Synchronize is grounded exactly on
// _examples/original_source/src/replay.cpp's Journal::reproduce: rewind
// to the checkpoint before the earliest undiscovered input (if any),
// collect pending inputs in range, then replay tick by tick, journaling
// any new arbiter decisions as they occur so they're visible to the very
// next iteration of the same replay.
package rollback

import (
	"shitbrix/internal/coord"
	"shitbrix/internal/director"
	"shitbrix/internal/journal"
	"shitbrix/internal/physical"
	"shitbrix/internal/pit"
	"shitbrix/internal/state"
)

// Rules bundles the per-tick logic Synchronize drives. A single
// BlockDirector instance is shared across both pits; it carries no
// per-player state.
type Rules struct {
	Director *director.BlockDirector
}

// ApplyInput mutates s according to in. PlayerInput button presses drive
// the cursor, raise flag, and (for Swap) the director's swap attempt;
// releases of movement buttons are no-ops (movement is edge-triggered).
// Spawn* inputs insert directly into the target pit.
func ApplyInput(s *state.GameState, d *director.BlockDirector, in state.Input) {
	switch v := in.(type) {
	case state.PlayerInput:
		applyPlayerInput(s, d, v)
	case state.SpawnBlockInput:
		p := s.Pits[v.Player]
		for c := 0; c < coord.PitCols; c++ {
			p.SpawnBlock(v.Colors[c], coord.RowCol{R: v.Row, C: c}, physical.Preview)
		}
	case state.SpawnGarbageInput:
		p := s.Pits[v.Player]
		p.SpawnGarbage(v.RC, v.Columns, v.Rows, v.Loot)
	}
}

func applyPlayerInput(s *state.GameState, d *director.BlockDirector, in state.PlayerInput) {
	if in.Player < 0 || in.Player >= len(s.Pits) {
		return
	}
	p := s.Pits[in.Player]

	switch in.Button {
	case state.ButtonLeft:
		if in.Action == state.Press {
			p.CursorMove(pit.DirLeft)
		}
	case state.ButtonRight:
		if in.Action == state.Press {
			p.CursorMove(pit.DirRight)
		}
	case state.ButtonUp:
		if in.Action == state.Press {
			p.CursorMove(pit.DirUp)
		}
	case state.ButtonDown:
		if in.Action == state.Press {
			p.CursorMove(pit.DirDown)
		}
	case state.ButtonSwap:
		if in.Action == state.Press {
			d.Swap(in.Player, p, in.GameTime)
		}
	case state.ButtonRaise:
		p.SetRaise(in.Action == state.Press)
	}
}

// Synchronize advances s to target_time, first rewinding to the
// checkpoint before the earliest undiscovered input if one lies before
// target_time. Returns the (possibly replaced) state and the index of
// the player whose pit just lost, or -1 if the game is still in progress.
func Synchronize(s *state.GameState, targetTime int64, j *journal.Journal, rules Rules) (*state.GameState, int) {
	if e, ok := j.EarliestUndiscovered(); ok && e < targetTime {
		if cp := j.CheckpointBefore(e); cp != nil {
			s = cp.Clone()
		}
	}

	j.DiscoverInputs(s.GameTime+1, targetTime)

	loser := -1
	for s.GameTime < targetTime && loser < 0 {
		next := s.GameTime + 1
		// Read the journal per tick so inputs journaled earlier in this
		// replay (arbiter decisions) are applied too.
		for _, in := range j.GetInputs(next) {
			ApplyInput(s, rules.Director, in)
		}

		s.Update()

		for player, p := range s.Pits {
			if rules.Director.Update(player, p, s.GameTime) {
				loser = player
			}
		}

		if s.GameTime%journal.CheckpointInterval == 0 {
			j.AddCheckpoint(s.Clone())
		}
	}

	return s, loser
}
