// Package director implements BlockDirector: the per-tick controller that
// sequences the logic package's examination passes over one pit, emits
// game events, and decides the game-over gate. Grounded on the teacher's
// engine.go tick() method for the overall "mutate, then emit" orchestration
// shape, generalized from combat resolution to match/fall resolution.
package director

import (
	"shitbrix/internal/coord"
	"shitbrix/internal/hub"
	"shitbrix/internal/logic"
	"shitbrix/internal/physical"
	"shitbrix/internal/pit"
)

// BlockDirector orchestrates one player's pit for one tick. It holds no
// per-player state of its own — callers may share a single instance
// across both pits in a session.
type BlockDirector struct {
	Hub *hub.Hub

	// DebugNoGameOver suppresses the game-over decision even when panic
	// expires, for scripted test scenarios that need to keep simulating
	// past the point a real game would end (see spec.md §8 S4).
	DebugNoGameOver bool
}

// New creates a BlockDirector emitting onto h.
func New(h *hub.Hub) *BlockDirector {
	return &BlockDirector{Hub: h}
}

func (d *BlockDirector) emit(e hub.Event) {
	if d.Hub != nil {
		d.Hub.Emit(e)
	}
}

// Update runs one tick of orchestration for player's pit at gameTime,
// per spec.md §4.4 steps 1-11. Returns true if this pit just lost
// (panic expired), meaning the opponent wins.
func (d *BlockDirector) Update(player int, p *pit.Pit, gameTime int64) bool {
	trivia := hub.Trivia{GameTime: gameTime, Player: player}

	p.UntagAll()

	if p.IsStarving() {
		d.emit(hub.Event{Kind: hub.Starve, Trivia: trivia})
	}

	fin := logic.ExamineFinish(p)
	if fin.NewRow {
		p.StopRaiseIfRequested()
	}

	if fin.Dissolvers > 0 {
		d.emit(hub.Event{Kind: hub.GarbageDissolves, Trivia: trivia})
	}
	logic.ConvertGarbage(p)

	if fin.BlockDied {
		d.emit(hub.Event{Kind: hub.BlockDies, Trivia: trivia})
	}
	p.RemoveDead()

	landed := logic.HandleFallers(p)
	for _, ph := range landed {
		d.emit(hub.Event{Kind: hub.PhysicalLands, Trivia: trivia, RC: ph.RC})
	}

	match := logic.HandleHots(p)
	if match.Matched {
		d.emit(hub.Event{Kind: hub.Match, Trivia: trivia, Combo: match.Combo, Chaining: match.Chaining})
	}

	p.RefreshPeak()
	report := logic.ExaminePit(p)

	if report.Chaining {
		p.DoChain()
	}
	if report.Chaining || match.Combo > 3 {
		p.ReplenishRecovery()
	} else {
		p.DoRecovery()
	}

	if (fin.ChainStop || match.ChainStop) && !report.Chaining {
		if counter := p.ExtractChain(); counter > 0 {
			d.emit(hub.Event{Kind: hub.Chain, Trivia: trivia, Counter: counter})
		}
	}

	gameOver := false
	recovering := p.Recovery > 0
	if report.Full && !report.Chaining && !report.Breaking && !recovering {
		if p.DoPanic() == 0 && !d.DebugNoGameOver {
			gameOver = true
		}
	} else {
		p.ReplenishPanic()
	}

	p.ScrollOn = !(report.Full || report.Chaining || report.Breaking || recovering)

	return gameOver
}

// Swap attempts to swap the cells at the cursor and its right neighbor.
// Either cell may be empty (a Fake block is spawned in its place so other
// blocks can't fall through the moving cell mid-swap), hold a swappable
// block, or both. Returns false without effect if the swap is illegal.
func (d *BlockDirector) Swap(player int, p *pit.Pit, gameTime int64) bool {
	left := p.Cursor.RC
	right := left.Right()

	a := p.At(left)
	b := p.At(right)

	if a != nil && !a.Swappable() {
		return false
	}
	if b != nil && !b.Swappable() {
		return false
	}
	if a == nil {
		a = p.SpawnBlock(coord.Fake, left, physical.Rest)
	}
	if b == nil {
		b = p.SpawnBlock(coord.Fake, right, physical.Rest)
	}

	p.Swap(a, b)
	// a now occupies right (moved right); b now occupies left (moved left).
	a.SetState(physical.SwapRight, physical.SwapTime, 1)
	b.SetState(physical.SwapLeft, physical.SwapTime, 1)

	d.emit(hub.Event{Kind: hub.Swap, Trivia: hub.Trivia{GameTime: gameTime, Player: player}})
	return true
}
