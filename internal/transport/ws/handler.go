package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dicematch/server/internal/engine"
	"github.com/dicematch/server/internal/wire"
)

// joinTimeout bounds the profile lookups done while pairing.
const joinTimeout = 5 * time.Second

// Sender is the slice of the hub the game handler needs.
type Sender interface {
	Send(conn engine.ConnectionID, msg Message)
	SendAll(conns []engine.ConnectionID, msg Message)
}

// GameHandler translates websocket events into engine operations and
// fans the results back out to the session's connections.
type GameHandler struct {
	engine *engine.Engine
	sender Sender
	logger *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(eng *engine.Engine, sender Sender, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		engine: eng,
		sender: sender,
		logger: logger.With(slog.String("component", "game_handler")),
	}
}

// HandleMessage routes one inbound envelope.
func (g *GameHandler) HandleMessage(client *Client, msg Message) {
	switch msg.Type {
	case EventJoin:
		g.handleJoin(client, msg.Payload)
	case EventStartGame:
		g.handleStartGame(client, msg.Payload)
	case EventBuildDice:
		g.handleBuildDice(client, msg.Payload)
	case EventMovePawns:
		g.handleMovePawns(client, msg.Payload)
	case EventAnimationEnd:
		g.handleAnimationEnd(client, msg.Payload)
	case EventPing:
		g.send(client.ID, EventPong, nil)
	default:
		g.logger.Warn("unknown event",
			slog.String("conn_id", string(client.ID)),
			slog.String("event", string(msg.Type)),
		)
	}
}

// HandleDisconnect notifies the departed player's opponent and tears
// the session down. A connection that was only waiting in the queue has
// no session and nothing to clean up.
func (g *GameHandler) HandleDisconnect(client *Client) {
	session := g.engine.GetSessionByConnection(client.ID)
	if session == nil {
		return
	}

	conns, err := g.engine.ResolveConnectionsForSession(session.ID)
	if err == nil {
		for _, conn := range conns {
			if conn == client.ID {
				continue
			}
			g.send(conn, EventPlayerLeft, ErrorPayload{Message: "opponent disconnected"})
		}
	}
	g.engine.TeardownSession(session.ID)
}

func (g *GameHandler) handleJoin(client *Client, raw json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client.ID, "invalid join payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()

	sessionID, err := g.engine.Join(ctx, client.ID, payload.UserID)
	if err != nil {
		g.logger.Error("join failed",
			slog.Int64("user_id", int64(payload.UserID)),
			slog.Any("error", err),
		)
		g.sendError(client.ID, "failed to join game")
		return
	}
	if sessionID == "" {
		// Queued; the pairing join will notify both sides.
		return
	}

	conns, err := g.engine.ResolveConnectionsForSession(sessionID)
	if err != nil {
		return
	}
	g.sendAll(conns, EventMatched, MatchedPayload{GameID: sessionID})
}

func (g *GameHandler) handleStartGame(client *Client, raw json.RawMessage) {
	var payload StartGamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client.ID, "invalid startGame payload")
		return
	}

	session, err := g.engine.GetSession(payload.GameID)
	if err != nil {
		g.sendError(client.ID, "game not found")
		return
	}

	states := make(wire.PlayerStates, len(session.States))
	for id, state := range session.States {
		states[id] = state
	}
	g.send(client.ID, EventGameState, GameStatePayload{
		GameID:       session.ID,
		PlayersState: states,
		CurrentTurn:  session.CurrentTurn,
	})
}

func (g *GameHandler) handleBuildDice(client *Client, raw json.RawMessage) {
	var payload BuildDicePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client.ID, "invalid buildDice payload")
		return
	}

	result, err := g.engine.SubmitDice(payload.GameID, payload.UserID, payload.DiceValues)
	if err != nil {
		g.sendError(client.ID, "failed to build dice")
		return
	}
	if result == nil {
		// First submission of the round; wait for the opponent.
		return
	}

	// Re-arm both players' dice before announcing, so a prompt next
	// submission never races a stale round.
	if err := g.engine.ResetDice(payload.GameID); err != nil {
		g.sendError(client.ID, "failed to build dice")
		return
	}

	conns, err := g.engine.ResolveConnectionsForSession(payload.GameID)
	if err != nil {
		return
	}
	g.sendAll(conns, EventDiceRolled, DiceRolledPayload{
		DiceValues:  result.Faces,
		DiceResults: result.Rolls,
		Turn:        result.NextTurn,
	})
}

func (g *GameHandler) handleMovePawns(client *Client, raw json.RawMessage) {
	var payload MovePawnsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client.ID, "invalid movePawns payload")
		return
	}

	if err := g.engine.ApplyMovement(payload.GameID, payload.Animation); err != nil {
		g.sendError(client.ID, "failed to move pawns")
		return
	}

	conns, err := g.engine.ResolveConnectionsForSession(payload.GameID)
	if err != nil {
		return
	}
	g.sendAll(conns, EventPawnsMoved, PawnsMovedPayload{Animation: payload.Animation})
}

func (g *GameHandler) handleAnimationEnd(client *Client, raw json.RawMessage) {
	var payload AnimationEndPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client.ID, "invalid animationEnd payload")
		return
	}

	winner, won, err := g.engine.CompleteMovement(payload.GameID, payload.UserID)
	if err != nil {
		g.sendError(client.ID, "failed to complete movement")
		return
	}

	conns, err := g.engine.ResolveConnectionsForSession(payload.GameID)
	if err != nil {
		return
	}
	if won {
		g.sendAll(conns, EventGameEnded, GameEndedPayload{Winner: winner})
		g.engine.TeardownSession(payload.GameID)
		return
	}
	g.sendAll(conns, EventNewTurnStart, nil)
}

func (g *GameHandler) send(conn engine.ConnectionID, t EventType, payload any) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		g.logger.Error("encode outbound message",
			slog.String("event", string(t)),
			slog.Any("error", err),
		)
		return
	}
	g.sender.Send(conn, msg)
}

func (g *GameHandler) sendAll(conns []engine.ConnectionID, t EventType, payload any) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		g.logger.Error("encode outbound message",
			slog.String("event", string(t)),
			slog.Any("error", err),
		)
		return
	}
	g.sender.SendAll(conns, msg)
}

func (g *GameHandler) sendError(conn engine.ConnectionID, message string) {
	g.send(conn, EventError, ErrorPayload{Message: message})
}
