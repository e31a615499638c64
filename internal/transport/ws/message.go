package ws

import (
	"encoding/json"
	"fmt"

	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/wire"
)

// EventType names a message on the wire.
type EventType string

// Client-to-server events
const (
	EventJoin         EventType = "join"
	EventStartGame    EventType = "startGame"
	EventBuildDice    EventType = "buildDice"
	EventMovePawns    EventType = "movePawns"
	EventAnimationEnd EventType = "animationEnd"
	EventPing         EventType = "ping"
)

// Server-to-client events
const (
	EventMatched      EventType = "matched"
	EventGameState    EventType = "gameState"
	EventDiceRolled   EventType = "diceRolled"
	EventPawnsMoved   EventType = "pawnsMoved"
	EventNewTurnStart EventType = "newTurnStart"
	EventGameEnded    EventType = "gameEnded"
	EventPlayerLeft   EventType = "playerLeft"
	EventError        EventType = "error"
	EventPong         EventType = "pong"
)

// Message is the envelope for all websocket traffic: an event name for
// routing plus the event's payload, kept raw until the handler knows
// which type to decode.
type Message struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(t EventType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Message{Type: t, Payload: data}, nil
}

// JoinPayload asks to enter the waiting queue.
type JoinPayload struct {
	UserID model.PlayerID `json:"userId"`
}

// StartGamePayload requests the initial session state.
type StartGamePayload struct {
	GameID model.SessionID `json:"gameId"`
}

// BuildDicePayload submits a player's six candidate faces.
type BuildDicePayload struct {
	GameID     model.SessionID `json:"gameId"`
	UserID     model.PlayerID  `json:"userId"`
	DiceValues []int           `json:"diceValues"`
}

// MovePawnsPayload submits a movement batch.
type MovePawnsPayload struct {
	GameID    model.SessionID     `json:"gameId"`
	Animation model.MovementBatch `json:"animation"`
}

// AnimationEndPayload signals a player's movement animation finished.
type AnimationEndPayload struct {
	GameID model.SessionID `json:"gameId"`
	UserID model.PlayerID  `json:"userId"`
}

// MatchedPayload notifies both players of their new session.
type MatchedPayload struct {
	GameID model.SessionID `json:"gameId"`
}

// GameStatePayload carries the full session snapshot.
type GameStatePayload struct {
	GameID       model.SessionID   `json:"gameId"`
	PlayersState wire.PlayerStates `json:"playersState"`
	CurrentTurn  model.PlayerID    `json:"currentTurn"`
}

// DiceRolledPayload carries a resolved round.
type DiceRolledPayload struct {
	DiceValues  wire.DiceFaces   `json:"diceValues"`
	DiceResults wire.DiceResults `json:"diceResults"`
	Turn        model.PlayerID   `json:"turn"`
}

// PawnsMovedPayload echoes an accepted movement batch.
type PawnsMovedPayload struct {
	Animation model.MovementBatch `json:"animation"`
}

// GameEndedPayload announces the winner.
type GameEndedPayload struct {
	Winner model.PlayerID `json:"winner"`
}

// ErrorPayload carries a failure notification. The playerLeft event
// reuses this shape.
type ErrorPayload struct {
	Message string `json:"message"`
}
