package coordinator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"shitbrix/internal/coordinator"
	"shitbrix/internal/protocol"
	"shitbrix/internal/state"
	"shitbrix/internal/transport"
)

var upgrader = websocket.Upgrader{}

func newClientChannelPair(t *testing.T) (clientCh, serverCh *transport.Channel) {
	t.Helper()
	upgraded := make(chan struct{})
	var server *transport.Channel

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		server = transport.Accept(conn, nil)
		close(upgraded)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := transport.Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case <-upgraded:
	case <-time.After(2 * time.Second):
		t.Fatal("server never finished upgrading")
	}
	return client, server
}

func waitForInbox(t *testing.T, ch *transport.Channel) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for ch.Inbox.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("message never arrived")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// TestClientAppliesMETAThenSTART verifies the client adopts Players/Seed
// from a META message and transitions Ingame on START.
func TestClientAppliesMETAThenSTART(t *testing.T) {
	clientCh, serverCh := newClientChannelPair(t)
	c := coordinator.NewClient(clientCh, 0)

	serverCh.Send(protocol.Message{Sender: "server", Recipient: "0", Type: protocol.TypeMETA, Payload: "2 12345"})
	waitForInbox(t, clientCh)
	c.Poll()

	if len(c.State.Pits) != 2 {
		t.Fatalf("got %d pits after META, want 2", len(c.State.Pits))
	}
	if c.Ingame {
		t.Fatal("expected Ingame = false before START")
	}

	serverCh.Send(protocol.Message{Sender: "server", Recipient: "0", Type: protocol.TypeSTART, Payload: ""})
	waitForInbox(t, clientCh)
	c.Poll()

	if !c.Ingame || !c.Ready {
		t.Error("expected Ingame and Ready = true after START")
	}
}

// TestClientJournalsEchoedInput verifies an INPUT message from the server
// lands in the client's journal.
func TestClientJournalsEchoedInput(t *testing.T) {
	clientCh, serverCh := newClientChannelPair(t)
	c := coordinator.NewClient(clientCh, 0)

	serverCh.Send(protocol.Message{
		Sender: "server", Recipient: "0", Type: protocol.TypeINPUT,
		Payload: "PlayerInput 4 0 swap press",
	})
	waitForInbox(t, clientCh)
	c.Poll()

	inputs := c.Journal.DiscoverInputs(0, 1000)
	if len(inputs) != 1 {
		t.Fatalf("got %d journaled inputs, want 1", len(inputs))
	}
}

// TestClientGameEndSetsWinnerAndStopsIngame verifies a GAMEEND message
// records the winner and clears Ingame.
func TestClientGameEndSetsWinnerAndStopsIngame(t *testing.T) {
	clientCh, serverCh := newClientChannelPair(t)
	c := coordinator.NewClient(clientCh, 0)
	c.Ingame = true

	serverCh.Send(protocol.Message{Sender: "server", Recipient: "0", Type: protocol.TypeGAMEEND, Payload: "1"})
	waitForInbox(t, clientCh)
	c.Poll()

	if c.Ingame {
		t.Error("expected Ingame = false after GAMEEND")
	}
	if c.Winner != state.Player1Wins {
		t.Errorf("Winner = %v, want Player1Wins", c.Winner)
	}
}
