package coordinator

import (
	"shitbrix/internal/arbiter"
	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/rollback"
	"shitbrix/internal/state"
)

// Local is the single-process variant: player input is journaled
// directly and the arbiter runs in-process, journal-only (no broadcast).
type Local struct {
	Switches

	State   *state.GameState
	Journal *journal.Journal
	Rules   rollback.Rules
	Arbiter *arbiter.Arbiter
	Meta    state.Meta

	hub *hub.Hub
}

// NewLocal creates a Local coordinator for meta.Players pits.
func NewLocal(meta state.Meta) *Local {
	c := &Local{Meta: assignSessionID(meta), Switches: Switches{Speed: 1}}
	c.GameReset(meta.Players, false)
	return c
}

// GameStart marks the session as running.
func (c *Local) GameStart() {
	c.Ingame = true
	c.Ready = true
}

// GameInput resolves state.TimeASAP to the next tick and journals i.
func (c *Local) GameInput(in state.Input) {
	if pi, ok := in.(state.PlayerInput); ok && pi.GameTime == state.TimeASAP {
		pi.GameTime = c.State.GameTime + 1
		in = pi
	}
	c.Journal.AddInput(in)
}

// GameReset rebuilds state, journal, hub, and arbiter from scratch.
func (c *Local) GameReset(players int, replay bool) {
	c.State = state.New(players)
	c.Journal = defaultJournal()
	c.hub, c.Rules = newRules()
	c.Arbiter = arbiter.New(c.Meta.Seed, c.Journal, c.State)
	c.hub.Subscribe(c.Arbiter.Handle)
	c.Ingame = false
	c.Ready = false
	c.Winner = state.Undecided
}

// SetSpeed updates the speed switch.
func (c *Local) SetSpeed(speed int) { c.Speed = speed }

// Poll is a no-op: local mode has no network channel to drain.
func (c *Local) Poll() {}

// Tick advances the simulation by Speed ticks via Synchronize. Returns
// true if the game just ended.
func (c *Local) Tick() bool {
	if c.Speed == 0 || !c.Ingame {
		return false
	}
	target := c.State.GameTime + int64(c.Speed)
	var loser int
	c.State, loser = rollback.Synchronize(c.State, target, c.Journal, c.Rules)
	if loser >= 0 {
		c.Ingame = false
		c.Winner = winnerOf(loser)
		return true
	}
	return false
}
