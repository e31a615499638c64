package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dicematch/server/internal/engine"
)

// Handler upgrades HTTP requests to websocket connections and attaches
// them to the hub.
type Handler struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the upgrade handler. An empty allowedOrigin admits
// any origin.
func NewHandler(hub *Hub, allowedOrigin string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With(slog.String("component", "ws_server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(engine.ConnectionID(uuid.NewString()), h.hub, conn, h.logger)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
