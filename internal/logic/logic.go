// Package logic implements the stateless per-tick examination and mutation
// passes that run over a *pit.Pit: detecting matches, propagating fall
// chains, dissolving garbage, and tagging candidates for the next pass.
// No function here retains state across calls; everything operates on the
// Pit's own contents and tag bitsets.
//
// Grounded on the teacher's zero-allocation in-place slice filtering idiom
// (internal/game/engine.go) for working-set iteration, generalized from
// combat resolution to match/fall resolution.
package logic

import (
	"shitbrix/internal/coord"
	"shitbrix/internal/physical"
	"shitbrix/internal/pit"
)

func snapshot(p *pit.Pit) []*physical.Physical {
	src := p.Contents()
	cp := make([]*physical.Physical, len(src))
	copy(cp, src)
	return cp
}

// FinishResult summarizes what ExamineFinish observed this tick.
type FinishResult struct {
	NewRow     bool // a preview row was promoted to playable
	Dissolvers int  // count of garbage newly tagged Dissolve
	BlockDied  bool // a non-fake block transitioned to Dead
	ChainStop  bool // a chaining block's chain was broken without matching
}

func tagAbove(p *pit.Pit, rc coord.RowCol, chaining bool) {
	above := p.At(rc.Above())
	if above == nil {
		return
	}
	above.Tag.Set(physical.TagFall)
	if above.IsBlock() {
		above.Chaining = chaining
	}
}

func tagAboveRow(p *pit.Pit, g *physical.Physical, chaining bool) {
	for c := 0; c < g.Cols; c++ {
		tagAbove(p, coord.RowCol{R: g.RC.R, C: g.RC.C + c}, chaining)
	}
}

// ExamineFinish classifies every physical whose timed state is about to
// arrive, per spec: Fall arrivals become Fall candidates, finishing swaps
// resolve to Rest/Dead, garbage Break arrivals are tagged Dissolve, and
// block Break arrivals resolve to Dead. Preview blocks that have scrolled
// into view are promoted to Rest.
func ExamineFinish(p *pit.Pit) FinishResult {
	var res FinishResult
	bottom := p.Bottom()

	for _, ph := range snapshot(p) {
		if ph.IsBlock() && ph.State == physical.Preview && ph.RC.R <= bottom {
			ph.State = physical.Rest
			ph.Time, ph.Speed = 0, 1
			ph.Tag.Set(physical.TagHot)
			res.NewRow = true
		}
	}

	for _, ph := range snapshot(p) {
		switch {
		case ph.State == physical.Fall && ph.IsArriving():
			ph.Tag.Set(physical.TagFall)
			if ph.IsBlock() {
				ph.Tag.Set(physical.TagHot)
			}

		case ph.IsGarbage() && ph.State == physical.Break && ph.IsArriving():
			ph.Tag.Set(physical.TagDissolve)
			res.Dissolvers++
			if ph.Rows == 1 {
				tagAboveRow(p, ph, true)
			}

		case ph.IsBlock() && (ph.State == physical.SwapLeft || ph.State == physical.SwapRight) && ph.IsArriving():
			if ph.Color == coord.Fake {
				ph.State = physical.Dead
				ph.Time, ph.Speed = 0, 1
			} else {
				ph.State = physical.Rest
				ph.Time, ph.Speed = 0, 1
				ph.Tag.Set(physical.TagFall)
				ph.Tag.Set(physical.TagHot)
				tagAbove(p, ph.RC, false)
			}

		case ph.IsBlock() && ph.State == physical.Break && ph.IsArriving():
			wasChaining := ph.Chaining
			wasFake := ph.Color == coord.Fake
			ph.State = physical.Dead
			ph.Time, ph.Speed = 0, 1
			if !wasFake {
				res.BlockDied = true
			}
			if wasChaining {
				res.ChainStop = true
			}
			tagAbove(p, ph.RC, true)
		}
	}

	return res
}

// ConvertGarbage spawns blocks from loot for every garbage tagged Dissolve,
// shrinking each by one row; garbage that survives is tagged Fall so
// HandleFallers considers it for descent.
func ConvertGarbage(p *pit.Pit) {
	for _, ph := range snapshot(p) {
		if !ph.Tag.Has(physical.TagDissolve) {
			continue
		}
		bottomRow := ph.BottomRow()
		colors := p.Shrink(ph)
		for c, color := range colors {
			rc := coord.RowCol{R: bottomRow, C: ph.RC.C + c}
			b := p.SpawnBlock(color, rc, physical.Rest)
			b.Tag.Set(physical.TagHot)
			b.Tag.Set(physical.TagFall)
			b.Chaining = true
		}
		if ph.Rows > 0 {
			ph.Tag.Set(physical.TagFall)
		}
	}
}

// HandleFallers iterates tagged-Fall physicals to a fixed point: anything
// that can fall moves down one row and is cleared of its tag; anything
// still blocked after a round with no progress settles into Land (if it
// was already falling) or Rest. Returns the physicals that newly landed,
// for PhysicalLands event emission.
func HandleFallers(p *pit.Pit) []*physical.Physical {
	var working []*physical.Physical
	for _, ph := range snapshot(p) {
		if ph.Tag.Has(physical.TagFall) {
			working = append(working, ph)
		}
	}

	var landed []*physical.Physical

	for len(working) > 0 {
		var stillWaiting []*physical.Physical
		progressed := false

		for _, ph := range working {
			if p.CanFall(ph) {
				wasFalling := ph.State == physical.Fall
				p.Fall(ph)
				if wasFalling {
					ph.ContinueState(physical.RowHeight)
				} else {
					ph.SetState(physical.Fall, physical.RowHeight, physical.FallSpeed)
				}
				ph.Tag.Clear(physical.TagFall)
				progressed = true
			} else {
				stillWaiting = append(stillWaiting, ph)
			}
		}

		if !progressed {
			for _, ph := range stillWaiting {
				if ph.State == physical.Fall {
					ph.SetState(physical.Land, physical.LandTime, 1)
					ph.Tag.Set(physical.TagLand)
					landed = append(landed, ph)
				} else {
					ph.State = physical.Rest
					ph.Time, ph.Speed = 0, 1
				}
				ph.Tag.Clear(physical.TagFall)
			}
			break
		}
		working = stillWaiting
	}

	for _, ph := range snapshot(p) {
		if ph.State == physical.Fall {
			ph.Tag.Clear(physical.TagHot)
		}
	}
	return landed
}

// MatchResult summarizes the outcome of a HandleHots pass.
type MatchResult struct {
	Matched   bool
	Combo     int
	Chaining  bool // at least one matched block carried the chaining flag
	ChainStop bool // a chaining block broke its chain without matching
}

func sameColorMatchable(p *pit.Pit, rc coord.RowCol, color coord.Color) *physical.Physical {
	b := p.BlockAt(rc)
	if b == nil || !b.Matchable() || b.Color != color {
		return nil
	}
	return b
}

func horizontalRun(p *pit.Pit, rc coord.RowCol, color coord.Color) []coord.RowCol {
	cells := []coord.RowCol{rc}
	for c := rc.Left(); sameColorMatchable(p, c, color) != nil; c = c.Left() {
		cells = append(cells, c)
	}
	for c := rc.Right(); sameColorMatchable(p, c, color) != nil; c = c.Right() {
		cells = append(cells, c)
	}
	return cells
}

func verticalRun(p *pit.Pit, rc coord.RowCol, color coord.Color) []coord.RowCol {
	cells := []coord.RowCol{rc}
	for c := rc.Above(); sameColorMatchable(p, c, color) != nil; c = c.Above() {
		cells = append(cells, c)
	}
	for c := rc.Below(); sameColorMatchable(p, c, color) != nil; c = c.Below() {
		cells = append(cells, c)
	}
	return cells
}

// HandleHots scans every Hot matchable block, extending horizontal and
// vertical runs of the same color; the union of all runs length >= 3 is
// the match set. Matched blocks transition to Break; garbage adjacent to
// any matched block transitions to Break (dissolve), touched at most once.
// Non-matched blocks that were chaining lose the flag and report ChainStop.
func HandleHots(p *pit.Pit) MatchResult {
	matchSet := make(map[*physical.Physical]bool)

	for _, ph := range snapshot(p) {
		if !ph.IsBlock() || !ph.Tag.Has(physical.TagHot) || !ph.Matchable() {
			continue
		}
		if run := horizontalRun(p, ph.RC, ph.Color); len(run) >= 3 {
			for _, rc := range run {
				matchSet[p.BlockAt(rc)] = true
			}
		}
		if run := verticalRun(p, ph.RC, ph.Color); len(run) >= 3 {
			for _, rc := range run {
				matchSet[p.BlockAt(rc)] = true
			}
		}
	}

	var res MatchResult
	res.Combo = len(matchSet)
	res.Matched = res.Combo > 0

	for _, ph := range snapshot(p) {
		if !ph.IsBlock() {
			continue
		}
		if matchSet[ph] {
			if ph.Chaining {
				res.Chaining = true
			}
			ph.SetState(physical.Break, physical.BreakTime, 1)
		} else if ph.Chaining {
			ph.Chaining = false
			res.ChainStop = true
		}
	}

	if res.Matched {
		touched := make(map[*physical.Physical]bool)
		for ph := range matchSet {
			neighbors := [...]coord.RowCol{ph.RC.Above(), ph.RC.Below(), ph.RC.Left(), ph.RC.Right()}
			for _, n := range neighbors {
				if g := p.GarbageAt(n); g != nil && !touched[g] {
					touched[g] = true
					g.SetState(physical.Break, physical.DissolveTime, 1)
				}
			}
		}
	}

	return res
}

// PitReport is the output of ExaminePit: an O(pit) summary used by the
// director's game-over and scroll gates.
type PitReport struct {
	Chaining bool
	Breaking bool
	Full     bool
	Starving bool
}

// ExaminePit reports whether any block is still chaining, any physical is
// breaking, the pit is full, or the pit is starving (its bottom row has no
// resting block beneath it).
func ExaminePit(p *pit.Pit) PitReport {
	var r PitReport
	for _, ph := range p.Contents() {
		if ph.IsBlock() && ph.Chaining {
			r.Chaining = true
		}
		if ph.State == physical.Break {
			r.Breaking = true
		}
	}
	r.Full = p.IsFull()
	r.Starving = p.IsStarving()
	return r
}
