// Package pit implements one player's vertical playing field: the owned set
// of physicals, the sparse RowCol->Physical lookup, scrolling, cursor, and
// the chain/recovery/panic counters. Pit itself never examines or matches
// blocks — that's the logic package's job; Pit only owns state and enforces
// the structural invariants in spec.md §3.
//
// Grounded on _examples/original_source/src/block.hpp's PitImpl (block_map,
// scroll, swap/block/unblock) and on the teacher's internal/game/engine.go
// for the Go idiom of an owning slice plus a derived index map. The RowCol
// map is updated in place by every mutating Pit call (and rebuilt whole
// only by Clone), which keeps it in step with Pit.contents.
package pit

import (
	"fmt"

	"shitbrix/internal/coord"
	"shitbrix/internal/physical"
)

// Cursor is the player's swap cursor: a column-bounded position plus an
// animation counter (cosmetic only, never examined by logic).
type Cursor struct {
	RC            coord.RowCol
	AnimationTime int
}

// Dir is a cursor movement direction.
type Dir uint8

const (
	DirUp Dir = iota
	DirDown
	DirLeft
	DirRight
)

// Pit owns every physical belonging to one player.
type Pit struct {
	Loc string // purely cosmetic; unused by simulation logic

	contents []*physical.Physical       // insertion-preserved order
	byCell   map[coord.RowCol]*physical.Physical

	Scroll     int // integer pixels, units of RowHeight
	Speed      int // per-tick delta-scroll
	Raise      bool // persists the fast scroll speed until a new row promotes
	WantRaise  bool // live intent; false only requests a stop
	ScrollOn   bool // enabled/disabled per BlockDirector's gate (§4.4 step 11)

	Cursor Cursor

	peak  int // topmost resting row; lazily refreshed, may lag (never overstate)
	floor int // row below which nothing may exist

	Chain    int
	Recovery int
	Panic    int

	HighlightRow int // debug only
}

// New creates an empty pit. floor defaults to 1000 (effectively unbounded);
// tests may lower it with SetFloor.
func New(loc string) *Pit {
	p := &Pit{
		Loc:      loc,
		byCell:   make(map[coord.RowCol]*physical.Physical),
		Speed:    physical.ScrollSpeed,
		floor:    1000,
		ScrollOn: true,
		Panic:    physical.PanicTime,
	}
	p.Cursor = Cursor{RC: coord.RowCol{R: 0, C: PitCols()/2 - 1}}
	return p
}

// PitCols returns coord.PitCols; kept as a function so pit.go reads
// naturally alongside the rest of the package's method set.
func PitCols() int { return coord.PitCols }

// SetFloor overrides the default floor. Test-settable per spec.md §3.
func (p *Pit) SetFloor(floor int) { p.floor = floor }

// Floor returns the row below which nothing may exist.
func (p *Pit) Floor() int { return p.floor }

// Peak returns the topmost resting row (may lag the true value; see
// RefreshPeak). SPEC_FULL.md's Open Question decision: this port only
// refreshes peak explicitly, never opportunistically inline.
func (p *Pit) Peak() int { return p.peak }

// Top returns the topmost visible row, ceil(scroll / RowHeight).
func (p *Pit) Top() int {
	if p.Scroll >= 0 {
		return (p.Scroll + physical.RowHeight - 1) / physical.RowHeight
	}
	return -((-p.Scroll) / physical.RowHeight)
}

// Bottom returns the bottommost visible row. Uses floor rather than Top's
// ceil, so the two diverge while Scroll sits mid-row.
func (p *Pit) Bottom() int {
	if p.Scroll >= 0 {
		return p.Scroll/physical.RowHeight + coord.VisibleRows - 1
	}
	return -((-p.Scroll+physical.RowHeight-1)/physical.RowHeight) + coord.VisibleRows - 1
}

// Contents returns the insertion-ordered slice of owned physicals. Callers
// must not retain it across a mutating Pit call.
func (p *Pit) Contents() []*physical.Physical { return p.contents }

// At returns the physical occupying rc, or nil.
func (p *Pit) At(rc coord.RowCol) *physical.Physical { return p.byCell[rc] }

// BlockAt returns the block at rc, or nil if rc is empty or holds garbage.
func (p *Pit) BlockAt(rc coord.RowCol) *physical.Physical {
	if ph := p.byCell[rc]; ph != nil && ph.IsBlock() {
		return ph
	}
	return nil
}

// GarbageAt returns the garbage at rc, or nil if rc is empty or holds a
// block.
func (p *Pit) GarbageAt(rc coord.RowCol) *physical.Physical {
	if ph := p.byCell[rc]; ph != nil && ph.IsGarbage() {
		return ph
	}
	return nil
}

// index adds ph's occupied cells to the lookup map.
func (p *Pit) index(ph *physical.Physical) {
	for _, c := range ph.Cells() {
		p.byCell[c] = ph
	}
}

// unindex removes ph's occupied cells from the lookup map.
func (p *Pit) unindex(ph *physical.Physical) {
	for _, c := range ph.Cells() {
		if p.byCell[c] == ph {
			delete(p.byCell, c)
		}
	}
}

// collides reports whether any cell ph would occupy is already taken.
func (p *Pit) collides(rc coord.RowCol, rows, cols int) bool {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if _, ok := p.byCell[coord.RowCol{R: rc.R + r, C: rc.C + c}]; ok {
				return true
			}
		}
	}
	return false
}

// SpawnBlock inserts a new block. Panics (a Logic state violation per
// spec.md §7) if rc collides with an existing physical or is at/below
// floor.
func (p *Pit) SpawnBlock(color coord.Color, rc coord.RowCol, state physical.State) *physical.Physical {
	if rc.R >= p.floor {
		panic(fmt.Sprintf("pit: SpawnBlock at or below floor: %v floor=%d", rc, p.floor))
	}
	if p.collides(rc, 1, 1) {
		panic(fmt.Sprintf("pit: SpawnBlock collision at %v", rc))
	}
	b := physical.NewBlock(color, rc, state)
	p.contents = append(p.contents, b)
	p.index(b)
	return b
}

// SpawnGarbage inserts a new garbage block. Panics if out of horizontal
// bounds, below floor, loot cardinality mismatches, or of a colliding
// position.
func (p *Pit) SpawnGarbage(rc coord.RowCol, cols, rows int, loot []coord.Color) *physical.Physical {
	if cols < 1 || cols > coord.PitCols || rows < 1 {
		panic(fmt.Sprintf("pit: SpawnGarbage invalid dimensions %dx%d", cols, rows))
	}
	if rc.C < 0 || rc.C+cols > coord.PitCols {
		panic(fmt.Sprintf("pit: SpawnGarbage out of horizontal bounds at %v cols=%d", rc, cols))
	}
	if rc.R+rows-1 >= p.floor {
		panic(fmt.Sprintf("pit: SpawnGarbage at or below floor: %v floor=%d", rc, p.floor))
	}
	if len(loot) != cols*rows {
		panic(fmt.Sprintf("pit: SpawnGarbage loot cardinality %d != %d*%d", len(loot), cols, rows))
	}
	if p.collides(rc, rows, cols) {
		panic(fmt.Sprintf("pit: SpawnGarbage collision at %v", rc))
	}
	g := physical.NewGarbage(rc, cols, rows, loot)
	p.contents = append(p.contents, g)
	p.index(g)
	return g
}

// CanFall reports whether every cell directly under ph's bottom row is
// empty and above floor.
func (p *Pit) CanFall(ph *physical.Physical) bool {
	belowRow := ph.BottomRow() + 1
	if belowRow >= p.floor {
		return false
	}
	for c := 0; c < ph.Cols; c++ {
		rc := coord.RowCol{R: belowRow, C: ph.RC.C + c}
		if other, ok := p.byCell[rc]; ok && other != ph {
			return false
		}
	}
	return true
}

// Fall moves ph down one row. Precondition: CanFall(ph). Panics otherwise
// (Logic state violation).
func (p *Pit) Fall(ph *physical.Physical) {
	if !p.CanFall(ph) {
		panic(fmt.Sprintf("pit: Fall called without CanFall at %v", ph.RC))
	}
	p.unindex(ph)
	ph.RC.R++
	p.index(ph)
}

// Swap exchanges blockA and blockB's positions and Chaining flags. Panics
// if either is not actually recorded at its own RC (a caller contract
// violation, per spec.md §7 "Enforce").
func (p *Pit) Swap(a, b *physical.Physical) {
	if p.byCell[a.RC] != a || p.byCell[b.RC] != b {
		panic("pit: Swap called with a physical not at its recorded cell")
	}
	p.unindex(a)
	p.unindex(b)
	a.RC, b.RC = b.RC, a.RC
	a.Chaining, b.Chaining = b.Chaining, a.Chaining
	p.index(a)
	p.index(b)
}

// Shrink removes the bottom row of garbage's loot/extent. Returns the
// colors removed; if no rows remain, the physical is also removed from
// the pit entirely.
func (p *Pit) Shrink(g *physical.Physical) []coord.Color {
	p.unindex(g)
	row := g.ShrinkGarbage()
	if g.Rows <= 0 {
		p.removeFromContents(g)
		return row
	}
	p.index(g)
	return row
}

func (p *Pit) removeFromContents(target *physical.Physical) {
	for i, ph := range p.contents {
		if ph == target {
			p.contents = append(p.contents[:i], p.contents[i+1:]...)
			return
		}
	}
}

// RemoveDead erases every Dead physical from both the contents slice and
// the cell map. A no-op when nothing is dead.
func (p *Pit) RemoveDead() {
	n := 0
	for _, ph := range p.contents {
		if ph.State == physical.Dead {
			p.unindex(ph)
			continue
		}
		p.contents[n] = ph
		n++
	}
	p.contents = p.contents[:n]
}

// UntagAll clears every physical's tag bitset. A no-op when nothing is
// tagged.
func (p *Pit) UntagAll() {
	for _, ph := range p.contents {
		ph.Tag = physical.TagNone
	}
}

// RefreshPeak rescans contents for the topmost resting physical's row and
// lowers Peak to match. Peak never overstates: calling this when nothing
// rests leaves Peak unchanged.
func (p *Pit) RefreshPeak() {
	found := false
	min := 0
	for _, ph := range p.contents {
		if ph.State != physical.Rest {
			continue
		}
		if !found || ph.RC.R < min {
			min = ph.RC.R
			found = true
		}
	}
	if found && min < p.peak {
		p.peak = min
	} else if !found {
		// nothing resting: conservatively leave peak where it was, it
		// cannot have risen.
		return
	}
}

// IsFull reports whether at least one Rest physical has rc.R < Top().
func (p *Pit) IsFull() bool {
	top := p.Top()
	for _, ph := range p.contents {
		if ph.State == physical.Rest && ph.RC.R < top {
			return true
		}
	}
	return false
}

// IsStarving reports whether the row below Bottom() has no resting block.
func (p *Pit) IsStarving() bool {
	row := p.Bottom() + 1
	for c := 0; c < coord.PitCols; c++ {
		if ph := p.byCell[coord.RowCol{R: row, C: c}]; ph != nil && ph.IsBlock() && ph.State == physical.Rest {
			return false
		}
	}
	return true
}

// CursorMove moves the cursor one step, clamped to [Top(),Bottom()] x
// [0, PitCols-2].
func (p *Pit) CursorMove(dir Dir) {
	rc := p.Cursor.RC
	switch dir {
	case DirUp:
		rc.R--
	case DirDown:
		rc.R++
	case DirLeft:
		rc.C--
	case DirRight:
		rc.C++
	}
	if rc.R < p.Top() {
		rc.R = p.Top()
	}
	if rc.R > p.Bottom() {
		rc.R = p.Bottom()
	}
	if rc.C < 0 {
		rc.C = 0
	}
	if rc.C > coord.PitCols-2 {
		rc.C = coord.PitCols - 2
	}
	p.Cursor.RC = rc
}

// SetRaise sets the raise intent. Setting true also zeroes recovery
// (raising interrupts recovery). Setting false only requests a stop: the
// actual stop waits until the next whole preview row promotes (see
// StopRaiseIfRequested, called by the director on new_row).
func (p *Pit) SetRaise(flag bool) {
	p.WantRaise = flag
	if flag {
		p.Raise = true
		p.Recovery = 0
	}
}

// StopRaiseIfRequested finalizes a pending raise-stop request. Called by
// the director when a new preview row has just promoted.
func (p *Pit) StopRaiseIfRequested() {
	if !p.WantRaise {
		p.Raise = false
	}
}

// DoChain increments the chain counter and returns the new value.
func (p *Pit) DoChain() int {
	p.Chain++
	return p.Chain
}

// ExtractChain snaps the chain counter to zero and returns its prior value.
func (p *Pit) ExtractChain() int {
	c := p.Chain
	p.Chain = 0
	return c
}

// DoRecovery decrements recovery toward zero and returns the new value.
func (p *Pit) DoRecovery() int {
	if p.Recovery > 0 {
		p.Recovery--
	}
	return p.Recovery
}

// ReplenishRecovery resets recovery to its full value, but only if raise
// is not currently held (raising bypasses recovery entirely).
func (p *Pit) ReplenishRecovery() {
	if !p.Raise {
		p.Recovery = physical.RecoveryTime
	}
}

// DoPanic decrements panic toward zero and returns the new value.
func (p *Pit) DoPanic() int {
	if p.Panic > 0 {
		p.Panic--
	}
	return p.Panic
}

// ReplenishPanic resets the panic countdown to its full value.
func (p *Pit) ReplenishPanic() { p.Panic = physical.PanicTime }

// Update ticks every contained physical, advances scroll if enabled, keeps
// the cursor in bounds, and increments the cursor animation counter. It
// does not run any Logic pass — BlockDirector sequences those separately.
func (p *Pit) Update() {
	for _, ph := range p.contents {
		ph.Update()
	}

	if p.ScrollOn {
		delta := p.Speed
		if p.Raise {
			delta = physical.RaiseSpeed
		}
		p.Scroll += delta
	}

	p.CursorMove(dirNone) // reclamp after scroll moved Top()/Bottom()
	p.Cursor.AnimationTime++
}

const dirNone Dir = 255

// Clone returns a deep copy of the pit: every physical is duplicated and
// the cell map rebuilt, so the result shares no pointers with p. Required
// for journal checkpoints.
func (p *Pit) Clone() *Pit {
	cp := &Pit{
		Loc:          p.Loc,
		Scroll:       p.Scroll,
		Speed:        p.Speed,
		Raise:        p.Raise,
		WantRaise:    p.WantRaise,
		ScrollOn:     p.ScrollOn,
		Cursor:       p.Cursor,
		peak:         p.peak,
		floor:        p.floor,
		Chain:        p.Chain,
		Recovery:     p.Recovery,
		Panic:        p.Panic,
		HighlightRow: p.HighlightRow,
		byCell:       make(map[coord.RowCol]*physical.Physical, len(p.byCell)),
	}
	cp.contents = make([]*physical.Physical, len(p.contents))
	for i, ph := range p.contents {
		clone := ph.Clone()
		cp.contents[i] = clone
		cp.index(clone)
	}
	return cp
}
