package engine

import (
	"log/slog"

	"github.com/dicematch/server/internal/model"
)

// ApplyMovement relocates pawns per the batch. Every entry is validated
// before anything is written, so a bad batch leaves the session
// untouched: an unknown player fails with ErrPlayerNotFound, a slot
// outside the player's four pawns with ErrInvalidPawnIndex.
//
// This is purely a state write; the caller echoes the accepted batch to
// both connections.
func (e *Engine) ApplyMovement(id model.SessionID, batch model.MovementBatch) error {
	return e.withSession(id, func(s *model.Session) error {
		for _, move := range batch {
			state := s.State(move.PlayerID)
			if state == nil {
				return model.ErrPlayerNotFound
			}
			for _, slot := range move.PawnSlots {
				if slot < 0 || slot >= len(state.Pawns) {
					return model.ErrInvalidPawnIndex
				}
			}
		}

		for _, move := range batch {
			state := s.State(move.PlayerID)
			for _, slot := range move.PawnSlots {
				state.Pawns[slot].Position = move.To
			}
		}
		return nil
	})
}

// CompleteMovement marks the acting player's dice as fully consumed once
// their movement animation has finished. When both players' dice are
// back to all zeros, the round's settlement checkpoint, win detection
// runs: it returns the id of the first player in session order whose
// four pawns have all finished, or false when the turn simply continues.
//
// A player can reach all-finished mid-turn; the win is only recognized
// here, never mid-movement-batch.
func (e *Engine) CompleteMovement(id model.SessionID, player model.PlayerID) (model.PlayerID, bool, error) {
	var (
		winner model.PlayerID
		won    bool
	)
	err := e.withSession(id, func(s *model.Session) error {
		state := s.State(player)
		if state == nil {
			return model.ErrPlayerNotFound
		}
		for i := range state.DiceFaces {
			state.DiceFaces[i] = 0
		}

		if !s.AllDiceConsumed() {
			return nil
		}
		winner, won = s.Winner()
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if won {
		e.logger.Info("game won",
			slog.String("session_id", string(id)),
			slog.Int64("winner", int64(winner)),
		)
	}
	return winner, won, nil
}
