// Package engine implements the authoritative two-player session engine:
// matchmaking, per-session player/pawn/dice state, dice resolution and
// turn arbitration, movement application, win detection and teardown.
//
// Sessions share no mutable state and progress concurrently; within one
// session every state-mutating operation is serialized on the session's
// lock so the pairing and dice-exhaustion checks always observe a
// consistent snapshot.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dicematch/server/internal/dependencies/clock"
	"github.com/dicematch/server/internal/dependencies/random"
	"github.com/dicematch/server/internal/model"
)

const (
	// sessionIDSuffixLength is the random tail appended to the creation
	// timestamp. Collisions are possible in principle and accepted; ids
	// are not checked for uniqueness.
	sessionIDSuffixLength   = 7
	sessionIDSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// ProfileFetcher is the slice of the profile store the engine needs at
// session creation.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error)
}

// Engine owns the waiting queue, the identity registry and the set of
// live sessions.
type Engine struct {
	profiles ProfileFetcher
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	// mu guards the queue and registry. Session state is guarded
	// per-session; see sessionHandle.
	mu       sync.Mutex
	queue    matchQueue
	registry *identityRegistry
	sessions *sessionStore
}

// New creates an Engine.
func New(profiles ProfileFetcher, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Engine {
	return &Engine{
		profiles: profiles,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "engine")),
		registry: newIdentityRegistry(),
		sessions: newSessionStore(),
	}
}

// Join adds a connection to the waiting queue. When an opponent is
// already waiting, the two oldest entries are paired and a session is
// created; the new session id is returned. Otherwise the empty id is
// returned and the caller waits for a later join to complete the pair.
//
// Joining with a connection that is already queued fails with
// ErrAlreadyQueued. A profile fetch failure aborts session creation
// without registering either identity.
func (e *Engine) Join(ctx context.Context, conn ConnectionID, player model.PlayerID) (model.SessionID, error) {
	e.mu.Lock()
	if !e.queue.enqueue(conn, player) {
		e.mu.Unlock()
		return "", model.ErrAlreadyQueued
	}
	e.logger.Info("player joined queue",
		slog.Int64("player_id", int64(player)),
		slog.Int("waiting", e.queue.size()),
	)
	first, second, ok := e.queue.tryPair()
	e.mu.Unlock()

	if !ok {
		return "", nil
	}
	return e.createSession(ctx, first, second)
}

// createSession builds a session from two dequeued entries: fetches both
// profiles, assigns colors by arrival order, initializes four ready
// pawns per side, sets the first arrival as turn holder, and binds both
// identities. The profile fetches run outside any lock.
func (e *Engine) createSession(ctx context.Context, first, second queueEntry) (model.SessionID, error) {
	firstProfile, err := e.profiles.GetProfile(ctx, first.Player)
	if err != nil {
		return "", fmt.Errorf("fetch profile %d: %w", first.Player, err)
	}
	secondProfile, err := e.profiles.GetProfile(ctx, second.Player)
	if err != nil {
		return "", fmt.Errorf("fetch profile %d: %w", second.Player, err)
	}

	id := model.SessionID(fmt.Sprintf("game_%d_%s",
		e.clock.Now().UnixMilli(),
		e.random.String(sessionIDSuffixLength, sessionIDSuffixAlphabet),
	))

	session := &model.Session{
		ID:      id,
		Players: [2]model.PlayerID{first.Player, second.Player},
		States: map[model.PlayerID]*model.PlayerState{
			first.Player:  model.NewPlayerState(firstProfile.Username, firstProfile.AvatarRef, model.ColorBlue),
			second.Player: model.NewPlayerState(secondProfile.Username, secondProfile.AvatarRef, model.ColorRed),
		},
		CurrentTurn: first.Player,
		CreatedAt:   e.clock.Now(),
	}

	e.mu.Lock()
	e.registry.bind(first.Player, first.Conn)
	e.registry.bind(second.Player, second.Conn)
	e.mu.Unlock()
	e.sessions.put(session)

	e.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.Int64("player1", int64(first.Player)),
		slog.Int64("player2", int64(second.Player)),
	)
	return id, nil
}

// GetSession returns a snapshot of the session with the given id.
func (e *Engine) GetSession(id model.SessionID) (*model.Session, error) {
	h, ok := e.sessions.get(id)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return nil, model.ErrSessionNotFound
	}
	return h.session.Clone(), nil
}

// GetSessionByConnection returns a snapshot of the session the given
// connection's player is in, or nil if the connection is not bound to
// any session.
func (e *Engine) GetSessionByConnection(conn ConnectionID) *model.Session {
	e.mu.Lock()
	player, ok := e.registry.playerFor(conn)
	e.mu.Unlock()
	if !ok {
		return nil
	}

	h, ok := e.sessions.findByPlayer(player)
	if !ok {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return nil
	}
	return h.session.Clone()
}

// ResolveConnectionsForSession returns the connection handles of the
// session's players that are still bound, for fanning out notifications.
// A disconnected player simply yields no handle.
func (e *Engine) ResolveConnectionsForSession(id model.SessionID) ([]ConnectionID, error) {
	h, ok := e.sessions.get(id)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	h.mu.Lock()
	if h.removed {
		h.mu.Unlock()
		return nil, model.ErrSessionNotFound
	}
	players := h.session.Players
	h.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.resolveHandles(players[:]), nil
}

// TeardownSession unbinds both players' identities and removes the
// session. It reports whether a session existed to remove, and wins over
// any in-flight round state: operations that lost the race observe the
// removed marker and fail with ErrSessionNotFound.
func (e *Engine) TeardownSession(id model.SessionID) bool {
	h, ok := e.sessions.get(id)
	if !ok {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return false
	}
	h.removed = true
	e.sessions.remove(id)

	e.mu.Lock()
	for _, player := range h.session.Players {
		e.registry.unbind(player)
	}
	e.mu.Unlock()

	e.logger.Info("session removed",
		slog.String("session_id", string(id)),
		slog.Int("live_sessions", e.sessions.count()),
	)
	return true
}

// withSession runs fn with the session's lock held, after checking the
// session still exists.
func (e *Engine) withSession(id model.SessionID, fn func(*model.Session) error) error {
	h, ok := e.sessions.get(id)
	if !ok {
		return model.ErrSessionNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return model.ErrSessionNotFound
	}
	return fn(h.session)
}
