package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dicematch/server/internal/engine"
)

const (
	// writeWait is how long a single write may take before the
	// connection is considered dead.
	writeWait = 10 * time.Second

	// pongWait is how long we wait for a pong before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so the ping goes out
	// before the read deadline expires.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192

	// sendBufferSize bounds the per-client outbound queue. A client
	// that cannot drain it is dropped rather than blocking the hub.
	sendBufferSize = 32
)

// Client is one websocket connection. The hub owns registration and
// dispatch; the client owns the two pump goroutines that move messages
// between the socket and the hub.
type Client struct {
	ID engine.ConnectionID

	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	logger *slog.Logger
}

func newClient(id engine.ConnectionID, hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, sendBufferSize),
		logger: logger.With(slog.String("conn_id", string(id))),
	}
}

// readPump reads envelopes off the socket and feeds them to the hub
// until the connection drops. It runs as one goroutine per client and
// triggers unregistration on exit.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.Any("error", err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping malformed message", slog.Any("error", err))
			continue
		}
		c.hub.incoming <- inbound{client: c, msg: msg}
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with periodic pings. It exits when the hub closes
// the send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("write failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
