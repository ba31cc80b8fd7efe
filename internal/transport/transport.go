// Package transport provides the concrete implementation of the reliable-
// ordered message channel spec.md assumes and specifies only at its
// abstract boundary (§1, §5): gorilla/websocket carrying newline-delimited
// protocol.Message lines, with a background reader goroutine feeding a
// mailbox.Mailbox so the coordinator's poll() never blocks on the network.
package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shitbrix/internal/mailbox"
	"shitbrix/internal/protocol"
)

// ConnectTimeout bounds the client's initial dial attempt (spec.md §5).
const ConnectTimeout = 5 * time.Second

// Channel is one end of a reliable-ordered message connection: Send
// writes a line; inbound lines land in Inbox, fed by a background reader
// goroutine. The coordinator drains Inbox on poll() without ever blocking.
type Channel struct {
	conn   *websocket.Conn
	Inbox  *mailbox.Mailbox[protocol.Message]
	decode *protocol.Decoder
	logger *log.Logger

	// SessionID identifies this connection. protocol.Message.SessionID is
	// not part of the wire encoding (spec.md §9's open note), so it's
	// stamped here, per-connection, instead.
	SessionID string

	closed chan struct{}
}

// Dial connects to url as a client, within ConnectTimeout.
func Dial(ctx context.Context, url string, logger *log.Logger) (*Channel, error) {
	dialCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}
	return newChannel(conn, logger), nil
}

// Accept wraps an already-upgraded server-side connection.
func Accept(conn *websocket.Conn, logger *log.Logger) *Channel {
	return newChannel(conn, logger)
}

func newChannel(conn *websocket.Conn, logger *log.Logger) *Channel {
	c := &Channel{
		conn:      conn,
		Inbox:     mailbox.New[protocol.Message](256),
		decode:    protocol.NewDecoder(200, 400),
		logger:    logger,
		SessionID: uuid.NewString(),
		closed:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop is the "separate thread" spec.md §5 calls for: its only job is
// moving bytes off the wire into the mailbox. It never touches game state.
func (c *Channel) readLoop() {
	defer close(c.closed)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.logger != nil {
				c.logger.Printf("transport: read error, closing: %v", err)
			}
			return
		}
		msg, err := c.decode.Decode(string(data))
		if err != nil {
			if c.logger != nil {
				c.logger.Printf("transport: dropping malformed message: %v", err)
			}
			continue
		}
		msg.SessionID = c.SessionID
		if !c.Inbox.TryPush(msg) {
			if c.logger != nil {
				c.logger.Printf("transport: inbox full, dropping message from %s", msg.Sender)
			}
		}
	}
}

// Send writes m as a single text frame. Safe to call from the
// coordinator's own goroutine; concurrent calls from multiple goroutines
// require external serialization (gorilla/websocket connections are not
// safe for concurrent writers).
func (c *Channel) Send(m protocol.Message) error {
	line := protocol.Format(m)
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// Closed reports whether the read loop has exited (peer disconnected or a
// read error occurred) — the signal the coordinator uses to transition to
// a terminal state per spec.md §7's Transport error handling.
func (c *Channel) Closed() <-chan struct{} {
	return c.closed
}

// Close tears down the underlying connection.
func (c *Channel) Close() error {
	return c.conn.Close()
}
