package coordinator

import (
	"fmt"
	"strconv"

	"shitbrix/internal/arbiter"
	"shitbrix/internal/control"
	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/protocol"
	"shitbrix/internal/rollback"
	"shitbrix/internal/state"
	"shitbrix/internal/transport"
)

// Server is the authoritative variant: it stamps every accepted input
// with the server's own next game_time (so all participants agree on
// time), journals it, and broadcasts it to every connected client. The
// arbiter's decisions are journaled and broadcast identically.
type Server struct {
	Switches

	State   *state.GameState
	Journal *journal.Journal
	Rules   rollback.Rules
	Arbiter *arbiter.Arbiter
	Meta    state.Meta
	Clients []*transport.Channel

	hub *hub.Hub
}

// NewServer creates a Server coordinator for meta.Players pits.
func NewServer(meta state.Meta) *Server {
	s := &Server{Meta: assignSessionID(meta), Switches: Switches{Speed: 1}}
	s.GameReset(meta.Players, false)
	return s
}

// AddClient registers ch and sends it the current session META.
func (s *Server) AddClient(ch *transport.Channel) {
	s.Clients = append(s.Clients, ch)
	ch.Send(protocol.Message{
		Sender: "server", Recipient: "*", Type: protocol.TypeMETA,
		Payload: fmt.Sprintf("%d %d", s.Meta.Players, s.Meta.Seed),
	})
}

func (s *Server) broadcast(msg protocol.Message) {
	for _, ch := range s.Clients {
		ch.Send(msg)
	}
}

func (s *Server) broadcastInput(in state.Input) {
	payload, err := protocol.FormatInput(in)
	if err != nil {
		return
	}
	s.broadcast(protocol.Message{Sender: "server", Recipient: "*", Type: protocol.TypeINPUT, Payload: payload})
}

// GameStart marks the session running and tells every client to start.
func (s *Server) GameStart() {
	s.Ingame = true
	s.Ready = true
	s.broadcast(protocol.Message{Sender: "server", Recipient: "*", Type: protocol.TypeSTART})
}

// GameInput stamps in with the server's next game_time, journals it and
// broadcasts it. Poll routes every inbound INPUT message through it.
func (s *Server) GameInput(in state.Input) {
	stamped := withTime(in, s.State.GameTime+1)
	s.Journal.AddInput(stamped)
	s.broadcastInput(stamped)
}

// GameReset rebuilds state, journal, hub, and arbiter, and rewires the
// arbiter to broadcast its decisions to every client.
func (s *Server) GameReset(players int, replay bool) {
	s.State = state.New(players)
	s.Journal = defaultJournal()
	s.hub, s.Rules = newRules()
	s.Arbiter = arbiter.New(s.Meta.Seed, s.Journal, s.State)
	s.Arbiter.Broadcast = s.broadcastInput
	s.hub.Subscribe(s.Arbiter.Handle)
	s.Ingame = false
	s.Ready = false
	s.Winner = state.Undecided
}

// SetSpeed updates the speed switch and broadcasts it.
func (s *Server) SetSpeed(speed int) {
	s.Speed = speed
	s.broadcast(protocol.Message{Sender: "server", Recipient: "*", Type: protocol.TypeSPEED, Payload: strconv.Itoa(speed)})
}

// Poll drains every client's inbound mailbox.
func (s *Server) Poll() {
	for _, ch := range s.Clients {
		for _, msg := range ch.Inbox.Drain() {
			s.handle(msg)
		}
	}
}

func (s *Server) handle(msg protocol.Message) {
	if msg.Type != protocol.TypeINPUT {
		return
	}
	in, err := protocol.ParseInput(msg.Payload)
	if err != nil {
		return
	}
	s.GameInput(in)
}

func withTime(in state.Input, t int64) state.Input {
	switch v := in.(type) {
	case state.PlayerInput:
		v.GameTime = t
		return v
	case state.SpawnBlockInput:
		v.GameTime = t
		return v
	case state.SpawnGarbageInput:
		v.GameTime = t
		return v
	default:
		return in
	}
}

// Snapshot builds a value-copy view of the session for the control plane.
// It satisfies control.Session.
func (s *Server) Snapshot() control.StateSnapshot {
	players := make([]control.PitSummary, len(s.State.Pits))
	for i, p := range s.State.Pits {
		players[i] = control.PitSummary{
			Peak:     p.Peak(),
			Floor:    p.Floor(),
			Panic:    p.Panic,
			Recovery: p.Recovery,
		}
	}
	return control.StateSnapshot{
		GameTime: s.State.GameTime,
		Players:  players,
		Ingame:   s.Ingame,
		Ready:    s.Ready,
		Speed:    s.Speed,
		Winner:   int(s.Winner),
	}
}

// Tick advances the authoritative simulation. Returns true if the game
// just ended, broadcasting GAMEEND to every client.
func (s *Server) Tick() bool {
	if s.Speed == 0 || !s.Ingame {
		return false
	}
	target := s.State.GameTime + int64(s.Speed)
	var loser int
	s.State, loser = rollback.Synchronize(s.State, target, s.Journal, s.Rules)
	if loser >= 0 {
		s.Ingame = false
		s.Winner = winnerOf(loser)
		s.broadcast(protocol.Message{Sender: "server", Recipient: "*", Type: protocol.TypeGAMEEND, Payload: strconv.Itoa(int(s.Winner))})
		return true
	}
	return false
}
