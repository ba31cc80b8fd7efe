package coordinator

import (
	"strconv"
	"strings"

	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
	"shitbrix/internal/protocol"
	"shitbrix/internal/rollback"
	"shitbrix/internal/state"
	"shitbrix/internal/transport"
)

// Client is the network-participant variant: it never journals
// PlayerInput directly, sending INPUT over the channel instead, and
// applies whatever the server echoes back on Poll. TIME_ASAP resolution
// is server-authoritative (spec.md §9's "safe choice") — the client never
// fabricates a game_time.
type Client struct {
	Switches

	State        *state.GameState
	Journal      *journal.Journal
	Rules        rollback.Rules
	Channel      *transport.Channel
	PlayerNumber int
	Meta         state.Meta

	hub *hub.Hub
}

// NewClient creates a Client coordinator bound to ch, controlling
// playerNumber.
func NewClient(ch *transport.Channel, playerNumber int) *Client {
	c := &Client{Channel: ch, PlayerNumber: playerNumber, Switches: Switches{Speed: 1}}
	c.hub, c.Rules = newRules()
	c.Journal = defaultJournal()
	c.State = state.New(0)
	return c
}

// GameStart is a no-op on the client: ingame is driven by the server's
// START message (see handle).
func (c *Client) GameStart() {}

// GameInput never journals directly; it sends the input to the server as
// TIME_ASAP, stamped with the wire-carried sentinel unresolved.
func (c *Client) GameInput(in state.Input) {
	payload, err := protocol.FormatInput(in)
	if err != nil {
		return
	}
	c.Channel.Send(protocol.Message{
		Sender:    strconv.Itoa(c.PlayerNumber),
		Recipient: "server",
		Type:      protocol.TypeINPUT,
		Payload:   payload,
	})
}

// GameReset rebuilds local state and the journal for a fresh session.
func (c *Client) GameReset(players int, replay bool) {
	c.State = state.New(players)
	c.Journal = defaultJournal()
	c.Ingame = false
	c.Ready = false
	c.Winner = state.Undecided
}

// SetSpeed updates the speed switch.
func (c *Client) SetSpeed(speed int) { c.Speed = speed }

// Poll drains the inbound mailbox and applies each message.
func (c *Client) Poll() {
	for _, msg := range c.Channel.Inbox.Drain() {
		c.handle(msg)
	}
}

func (c *Client) handle(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeMETA:
		fields := strings.Fields(msg.Payload)
		if len(fields) < 2 {
			return
		}
		players, err1 := strconv.Atoi(fields[0])
		seed, err2 := strconv.ParseInt(fields[1], 10, 64)
		if err1 != nil || err2 != nil {
			return
		}
		c.Meta = state.Meta{Players: players, Seed: seed}
		c.GameReset(players, false)

	case protocol.TypeSTART:
		c.Ingame = true
		c.Ready = true

	case protocol.TypeINPUT:
		in, err := protocol.ParseInput(msg.Payload)
		if err != nil {
			return
		}
		// A freshly arrived input at or before the time the client has
		// already simulated past forces the next Synchronize to roll
		// back, since AddInput moves earliest_undiscovered backward.
		c.Journal.AddInput(in)

	case protocol.TypeRETRACT:
		t, err := strconv.ParseInt(msg.Payload, 10, 64)
		if err != nil {
			return
		}
		c.Journal.Retract(t)

	case protocol.TypeSPEED:
		sp, err := strconv.Atoi(msg.Payload)
		if err != nil {
			return
		}
		c.Speed = sp

	case protocol.TypeGAMEEND:
		w, err := strconv.Atoi(msg.Payload)
		if err != nil {
			return
		}
		c.Winner = state.Winner(w)
		c.Ingame = false
	}
}

// Tick advances local simulation to catch up with whatever the journal
// now holds. Returns true if the game just ended.
func (c *Client) Tick() bool {
	if c.Speed == 0 || !c.Ingame {
		return false
	}
	target := c.State.GameTime + int64(c.Speed)
	var loser int
	c.State, loser = rollback.Synchronize(c.State, target, c.Journal, c.Rules)
	return loser >= 0
}
