package engine

import (
	"log/slog"

	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/wire"
)

// RollResult carries the outcome of a resolved round: both face sets,
// both selected values, and the player who holds the next turn.
type RollResult struct {
	Faces    wire.DiceFaces
	Rolls    wire.DiceResults
	NextTurn model.PlayerID
}

// SubmitDice stores a player's six candidate faces for this round,
// overwriting any previous submission. When the opponent has also
// submitted, the round resolves: one face is selected at random from
// each set, the higher value takes the next turn, and the result is
// returned. Until then it returns nil: the caller waits for the other
// player.
//
// An all-zero face set counts as "not rolled", so submitting zeros never
// triggers resolution. After a resolution the caller is expected to
// issue ResetDice before the next round; resolution does not clear the
// submissions itself, letting the transport sequence the roll
// notification first.
func (e *Engine) SubmitDice(id model.SessionID, player model.PlayerID, faces []int) (*RollResult, error) {
	if len(faces) != model.DiceFaceCount {
		return nil, model.ErrInvalidDiceFaces
	}

	var result *RollResult
	err := e.withSession(id, func(s *model.Session) error {
		state := s.State(player)
		if state == nil {
			return model.ErrPlayerNotFound
		}
		copy(state.DiceFaces, faces)

		if !s.BothDiceSubmitted() {
			return nil
		}
		result = e.resolveRoll(s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result != nil {
		e.logger.Info("roll resolved",
			slog.String("session_id", string(id)),
			slog.Int64("next_turn", int64(result.NextTurn)),
		)
	}
	return result, err
}

// resolveRoll selects one face per player, decides the next turn holder
// and updates the session. Called with the session lock held.
//
// On a tie the turn goes to the player who did not hold it before the
// roll. With exactly two fixed ids this is id1+id2-current; the trick
// does not survive any generalization beyond two players.
func (e *Engine) resolveRoll(s *model.Session) *RollResult {
	first, second := s.Players[0], s.Players[1]
	firstState, secondState := s.State(first), s.State(second)

	firstRoll := firstState.DiceFaces[e.random.Intn(model.DiceFaceCount)]
	secondRoll := secondState.DiceFaces[e.random.Intn(model.DiceFaceCount)]
	firstState.LastRoll = firstRoll
	secondState.LastRoll = secondRoll

	var next model.PlayerID
	switch {
	case firstRoll > secondRoll:
		next = first
	case firstRoll < secondRoll:
		next = second
	default:
		next = first + second - s.CurrentTurn
	}
	s.CurrentTurn = next

	return &RollResult{
		Faces: wire.DiceFaces{
			first:  append([]int(nil), firstState.DiceFaces...),
			second: append([]int(nil), secondState.DiceFaces...),
		},
		Rolls: wire.DiceResults{
			first:  firstRoll,
			second: secondRoll,
		},
		NextTurn: next,
	}
}

// ResetDice zeroes both players' dice state, arming the next round.
func (e *Engine) ResetDice(id model.SessionID) error {
	return e.withSession(id, func(s *model.Session) error {
		for _, player := range s.Players {
			s.State(player).ResetDice()
		}
		return nil
	})
}
