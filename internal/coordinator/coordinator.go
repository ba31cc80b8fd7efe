// Package coordinator wires Pit/Logic/BlockDirector/Journal/Arbiter
// together into the three session variants spec.md §4.7 names: local,
// client, server. Shared switches and operations live here; each
// variant's Poll/Tick implements the behavior spec.md prescribes for it.
package coordinator

import (
	"shitbrix/internal/director"
	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/rollback"
	"shitbrix/internal/state"

	"github.com/google/uuid"
)

// Switches are the shared mutable flags every coordinator variant
// exposes.
type Switches struct {
	Speed  int // 0 = paused, 1 = normal
	Ready  bool
	Ingame bool
	Winner state.Winner
}

// Coordinator is the shared operation surface spec.md §4.7 names.
type Coordinator interface {
	GameStart()
	GameInput(in state.Input)
	GameReset(players int, replay bool)
	SetSpeed(speed int)
	Poll()
}

func newRules() (*hub.Hub, rollback.Rules) {
	h := hub.New()
	d := director.New(h)
	return h, rollback.Rules{Director: d}
}

func winnerOf(loser int) state.Winner {
	if loser == 0 {
		return state.Player1Wins
	}
	return state.Player0Wins
}

func defaultJournal() *journal.Journal {
	return journal.New(journal.DefaultLimits())
}

// assignSessionID fills meta.SessionID with a fresh random id if one
// wasn't already supplied (e.g. a client reconnecting with a known id).
func assignSessionID(meta state.Meta) state.Meta {
	if meta.SessionID == "" {
		meta.SessionID = uuid.NewString()
	}
	return meta
}
