// Package arbiter turns nondeterministic match/chain/starve events into
// new SpawnBlockInput/SpawnGarbageInput journal entries. It is the only
// component allowed to roll dice: clients don't share a PRNG
// implementation, so arbitration is centralized and its outputs are
// journaled (and thus replayable) rather than recomputed locally.
//
// The garbage-placement algorithm below is grounded exactly on
// _examples/original_source/src/arbiter.cpp's LocalArbiter::fire methods,
// not on spec.md's looser prose description of §4.6.
package arbiter

import (
	"math/rand"

	"shitbrix/internal/coord"
	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/state"
)

// ColorSupplier is a pure deterministic color stream seeded from
// GameMeta.Seed. NextSpawn feeds new preview rows; NextEmerge feeds
// garbage loot. Both draw from the same underlying generator — the
// source does not distinguish them beyond naming, and neither does this
// port.
type ColorSupplier struct {
	rng *rand.Rand
}

// NewColorSupplier seeds a color stream from seed.
func NewColorSupplier(seed int64) *ColorSupplier {
	return &ColorSupplier{rng: rand.New(rand.NewSource(seed))}
}

func (c *ColorSupplier) next() coord.Color {
	return coord.Color(1 + c.rng.Intn(coord.NumColors))
}

// NextSpawn draws the next preview-row color.
func (c *ColorSupplier) NextSpawn() coord.Color { return c.next() }

// NextEmerge draws the next garbage-loot color.
func (c *ColorSupplier) NextEmerge() coord.Color { return c.next() }

// Arbiter is a stateful hub.Observer. Construct one per session and
// Subscribe its Handle method to the BlockDirector's hub.
type Arbiter struct {
	colors  *ColorSupplier
	journal *journal.Journal
	state   *state.GameState

	// Broadcast is set by the server coordinator variant so every
	// journaled decision is also sent to clients as an INPUT message. Nil
	// in the local variant, where arbitration is journaled only.
	Broadcast func(state.Input)
}

// New creates an Arbiter reading pit geometry from s and journaling into
// j, seeded from seed (normally GameMeta.Seed).
func New(seed int64, j *journal.Journal, s *state.GameState) *Arbiter {
	return &Arbiter{colors: NewColorSupplier(seed), journal: j, state: s}
}

func opponent(player int) int { return 1 - player }

// Handle is the hub.Observer entry point.
func (a *Arbiter) Handle(e hub.Event) {
	switch e.Kind {
	case hub.Starve:
		a.onStarve(e)
	case hub.Match:
		a.onMatch(e)
	case hub.Chain:
		a.onChain(e)
	}
}

func (a *Arbiter) deliver(in state.Input) {
	a.journal.AddInput(in)
	if a.Broadcast != nil {
		a.Broadcast(in)
	}
}

// onStarve spawns a full preview row for the opponent, directly at the
// triggering tick's game_time (not +1 — matching arbiter.cpp's fire(Starve)
// exactly, unlike the Match/Chain paths below).
func (a *Arbiter) onStarve(e hub.Event) {
	victim := opponent(e.Trivia.Player)
	p := a.state.Pits[victim]

	var colors [coord.PitCols]coord.Color
	for i := range colors {
		colors[i] = a.colors.NextSpawn()
	}

	a.deliver(state.SpawnBlockInput{
		GameTime: e.Trivia.GameTime,
		Player:   victim,
		Row:      p.Bottom() + 1,
		Colors:   colors,
	})
}

// onMatch drops small garbage blocks sized 3/4/5 wide (cycling) on the
// opponent while counter := combo-3 stays positive, consumed 3 at a time.
// combo == 3 yields counter == 0 and drops nothing.
func (a *Arbiter) onMatch(e hub.Event) {
	counter := e.Combo - 3
	for counter > 0 {
		var cols int
		switch {
		case counter == 1:
			cols = 3
		case counter == 2:
			cols = 4
		default:
			cols = 5
		}
		a.dropGarbage(e.Trivia.GameTime, opponent(e.Trivia.Player), cols, 1)
		counter -= 3
	}
}

// onChain drops a single PitCols-wide x counter-row garbage block.
func (a *Arbiter) onChain(e hub.Event) {
	if e.Counter <= 0 {
		return
	}
	a.dropGarbage(e.Trivia.GameTime, opponent(e.Trivia.Player), coord.PitCols, e.Counter)
}

// dropGarbage places a cols x rows garbage at column 0, high enough above
// the victim's pit that it falls in: row = min(peak, top) - rows - 1.
// Always journaled at gameTime+1.
func (a *Arbiter) dropGarbage(gameTime int64, victim, cols, rows int) {
	p := a.state.Pits[victim]

	spawnRow := p.Peak()
	if top := p.Top(); top < spawnRow {
		spawnRow = top
	}
	spawnRow -= rows + 1

	loot := make([]coord.Color, cols*rows)
	for i := range loot {
		loot[i] = a.colors.NextEmerge()
	}

	a.deliver(state.SpawnGarbageInput{
		GameTime: gameTime + 1,
		Player:   victim,
		Rows:     rows,
		Columns:  cols,
		RC:       coord.RowCol{R: spawnRow, C: 0},
		Loot:     loot,
	})
}
