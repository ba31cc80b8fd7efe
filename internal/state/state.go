// Package state holds the value types that flow through the journal and
// the rollback engine: the tagged Input union, GameState (the clonable
// simulation snapshot), and GameMeta (immutable per-session parameters).
package state

import (
	"shitbrix/internal/coord"
	"shitbrix/internal/pit"
)

// TimeASAP is the sentinel game_time meaning "apply at the server's next
// tick". Only the coordinator may resolve it to a concrete time; the
// journal rejects inputs still carrying it.
const TimeASAP int64 = -1

// Button is a player input button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonSwap
	ButtonRaise
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonSwap:
		return "swap"
	case ButtonRaise:
		return "raise"
	default:
		return "unknown"
	}
}

// Action is press or release.
type Action uint8

const (
	Press Action = iota
	Release
)

func (a Action) String() string {
	if a == Release {
		return "release"
	}
	return "press"
}

// Input is the tagged union of everything the journal can record. The
// three concrete types below are its only implementations.
type Input interface {
	Time() int64
}

// PlayerInput is a raw button press/release from one player.
type PlayerInput struct {
	GameTime int64
	Player   int
	Button   Button
	Action   Action
}

func (i PlayerInput) Time() int64 { return i.GameTime }

// SpawnBlockInput inserts a new preview row at the bottom of a pit.
// Colors has exactly coord.PitCols entries, left to right.
type SpawnBlockInput struct {
	GameTime int64
	Player   int
	Row      int
	Colors   [coord.PitCols]coord.Color
}

func (i SpawnBlockInput) Time() int64 { return i.GameTime }

// SpawnGarbageInput drops a garbage block. Loot has exactly Rows*Columns
// entries, row-major bottom-to-top, left-to-right (see physical.Physical).
type SpawnGarbageInput struct {
	GameTime int64
	Player   int
	Rows     int
	Columns  int
	RC       coord.RowCol
	Loot     []coord.Color
}

func (i SpawnGarbageInput) Time() int64 { return i.GameTime }

// Winner records the outcome of a finished game.
type Winner int

const (
	Undecided Winner = iota
	Player0Wins
	Player1Wins
)

// Meta is the immutable parameters of one session.
type Meta struct {
	Players   int
	Seed      int64
	Winner    Winner
	SessionID string
}

// GameState is the mutable simulation snapshot: one pit per player plus the
// tick counter. It is a value-oriented type — Clone produces a fully
// independent copy for checkpointing and rollback.
type GameState struct {
	Pits     []*pit.Pit
	GameTime int64
}

// New creates a GameState with n freshly constructed, empty pits.
func New(n int) *GameState {
	s := &GameState{Pits: make([]*pit.Pit, n)}
	for i := range s.Pits {
		s.Pits[i] = pit.New("")
	}
	return s
}

// Clone deep-copies every pit; the result shares no pointers with s.
func (s *GameState) Clone() *GameState {
	cp := &GameState{
		Pits:     make([]*pit.Pit, len(s.Pits)),
		GameTime: s.GameTime,
	}
	for i, p := range s.Pits {
		cp.Pits[i] = p.Clone()
	}
	return cp
}

// Update advances every pit by one tick and increments GameTime. It does
// not run any Logic/BlockDirector pass — the rollback engine sequences
// those separately, once per pit, after this call.
func (s *GameState) Update() {
	for _, p := range s.Pits {
		p.Update()
	}
	s.GameTime++
}
