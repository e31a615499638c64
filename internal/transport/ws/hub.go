package ws

import (
	"context"
	"log/slog"

	"github.com/dicematch/server/internal/engine"
)

// EventHandler reacts to client traffic. Calls are made from the hub's
// run loop, one at a time.
type EventHandler interface {
	HandleMessage(client *Client, msg Message)
	HandleDisconnect(client *Client)
}

type inbound struct {
	client *Client
	msg    Message
}

// Hub tracks the live connections and serializes all game traffic
// through a single goroutine, so the handler never sees two events at
// once.
type Hub struct {
	logger *slog.Logger

	handler EventHandler

	clients    map[engine.ConnectionID]*Client
	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
}

// NewHub creates a hub. SetHandler must be called before Run.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger.With(slog.String("component", "ws_hub")),
		clients:    make(map[engine.ConnectionID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound, 64),
	}
}

// SetHandler wires the event handler. The handler needs the hub to send
// replies and the hub needs the handler to dispatch, so the two are
// connected after construction.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

// Run processes registrations and messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client.ID] = client
			h.logger.Info("client connected",
				slog.String("conn_id", string(client.ID)),
				slog.Int("clients", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client.ID]; !ok {
				continue
			}
			delete(h.clients, client.ID)
			close(client.send)
			h.logger.Info("client disconnected",
				slog.String("conn_id", string(client.ID)),
				slog.Int("clients", len(h.clients)),
			)
			h.handler.HandleDisconnect(client)

		case in := <-h.incoming:
			h.handler.HandleMessage(in.client, in.msg)

		case <-ctx.Done():
			for _, client := range h.clients {
				close(client.send)
			}
			clear(h.clients)
			return
		}
	}
}

// Send queues a message for one connection. A connection that has gone
// away, or whose send buffer is full, is skipped; game notifications
// are best effort.
func (h *Hub) Send(conn engine.ConnectionID, msg Message) {
	client, ok := h.clients[conn]
	if !ok {
		return
	}
	select {
	case client.send <- msg:
	default:
		h.logger.Warn("send buffer full, dropping message",
			slog.String("conn_id", string(conn)),
			slog.String("event", string(msg.Type)),
		)
	}
}

// SendAll queues a message for each of the given connections.
func (h *Hub) SendAll(conns []engine.ConnectionID, msg Message) {
	for _, conn := range conns {
		h.Send(conn, msg)
	}
}
