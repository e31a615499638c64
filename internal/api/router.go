// Package api exposes the profile HTTP API, the static avatar files and
// the websocket entry point.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dicematch/server/internal/api/apierr"
	"github.com/dicematch/server/internal/api/handler"
	"github.com/dicematch/server/internal/middleware"
	"github.com/dicematch/server/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Store     storage.Storage
	UploadDir string

	// WebsocketHandler is mounted at /ws when set.
	WebsocketHandler http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	userHandler := handler.NewUserHandler(cfg.Store, cfg.UploadDir)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Profile routes
	r.HandleFunc("/users", userHandler.Upsert).Methods(http.MethodPost)
	r.HandleFunc("/users/profile", userHandler.UpdateProfile).Methods(http.MethodPost)
	r.HandleFunc("/users/{email}", userHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/users/{email}/stats", userHandler.UpdateStats).Methods(http.MethodPatch)

	// Stored avatars
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))),
	).Methods(http.MethodGet)

	// Health check endpoint
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	if cfg.WebsocketHandler != nil {
		r.Handle("/ws", cfg.WebsocketHandler)
	}

	return r
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
