package physical_test

import (
	"testing"

	"shitbrix/internal/coord"
	"shitbrix/internal/physical"
)

// TestTagBitsetDistinctBits verifies every Tag constant occupies its own
// bit, so tags can be combined with | without colliding.
func TestTagBitsetDistinctBits(t *testing.T) {
	tags := []physical.Tag{
		physical.TagFall, physical.TagHot, physical.TagTouch,
		physical.TagDissolve, physical.TagLand,
	}
	seen := physical.TagNone
	for _, tg := range tags {
		if seen&tg != 0 {
			t.Fatalf("tag %v overlaps with a previously seen tag", tg)
		}
		seen |= tg
	}
}

// TestNewBlockDefaults verifies a fresh block starts with no tag and the
// requested state/color.
func TestNewBlockDefaults(t *testing.T) {
	b := physical.NewBlock(coord.Blue, coord.RowCol{R: 0, C: 0}, physical.Rest)
	if !b.IsBlock() {
		t.Fatal("expected IsBlock true")
	}
	if b.Color != coord.Blue {
		t.Errorf("color = %v, want %v", b.Color, coord.Blue)
	}
	if b.Tag != physical.TagNone {
		t.Errorf("tag = %v, want TagNone", b.Tag)
	}
}

// TestSetStateResetsTimer verifies SetState arms the timer for the new
// state, and IsArriving becomes true only once the timer reaches zero.
func TestSetStateResetsTimer(t *testing.T) {
	b := physical.NewBlock(coord.Red, coord.RowCol{}, physical.Rest)
	b.SetState(physical.Break, physical.BreakTime, 1)

	for i := 0; i < physical.BreakTime-1; i++ {
		if b.IsArriving() {
			t.Fatalf("arrived early at step %d", i)
		}
		b.Time--
	}
	b.Time--
	if !b.IsArriving() {
		t.Fatal("expected arrival once time reaches zero")
	}
}

// TestSwappableStates verifies resting and falling blocks can be swapped
// while breaking blocks cannot.
func TestSwappableStates(t *testing.T) {
	rest := physical.NewBlock(coord.Green, coord.RowCol{}, physical.Rest)
	if !rest.Swappable() {
		t.Error("a resting block should be swappable")
	}
	fall := physical.NewBlock(coord.Green, coord.RowCol{}, physical.Fall)
	if !fall.Swappable() {
		t.Error("a falling block should be swappable")
	}
	brk := physical.NewBlock(coord.Green, coord.RowCol{}, physical.Break)
	if brk.Swappable() {
		t.Error("a breaking block should not be swappable")
	}
}

// TestShrinkGarbageRemovesBottomRow verifies shrinking a garbage block by
// one row reduces Rows by one and returns one loot color per column.
func TestShrinkGarbageRemovesBottomRow(t *testing.T) {
	loot := make([]coord.Color, 3*2)
	for i := range loot {
		loot[i] = coord.Red
	}
	g := physical.NewGarbage(coord.RowCol{R: 0, C: 0}, 3, 2, loot)

	row := g.ShrinkGarbage()
	if len(row) != 3 {
		t.Fatalf("expected 3 loot colors, got %d", len(row))
	}
	if g.Rows != 1 {
		t.Errorf("Rows = %d, want 1", g.Rows)
	}
}
