// Package wire holds the typed codec for per-player mappings exchanged
// with clients. Session state, dice faces and roll results are keyed by
// player id, but JSON objects cannot carry integer keys losslessly, so
// the wire form is an ordered list of [id, value] pairs. This package is
// the single point of truth for that representation.
package wire

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dicematch/server/internal/model"
)

// PlayerMap is a mapping from player id to V that round-trips through
// JSON as an array of [id, value] pairs. Pairs are emitted in ascending
// id order so encoding is deterministic; decoding accepts any order.
type PlayerMap[V any] map[model.PlayerID]V

// MarshalJSON encodes the map as [[id, value], ...].
func (m PlayerMap[V]) MarshalJSON() ([]byte, error) {
	ids := make([]model.PlayerID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	pairs := make([][2]any, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, [2]any{id, m[id]})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes [[id, value], ...] back into the map.
func (m *PlayerMap[V]) UnmarshalJSON(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("player map is not a pair list: %w", err)
	}

	out := make(PlayerMap[V], len(pairs))
	for _, pair := range pairs {
		var id model.PlayerID
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return fmt.Errorf("player map key: %w", err)
		}
		var v V
		if err := json.Unmarshal(pair[1], &v); err != nil {
			return fmt.Errorf("player map value for %d: %w", id, err)
		}
		out[id] = v
	}
	*m = out
	return nil
}

// PlayerStates is the wire form of a session's per-player state.
type PlayerStates = PlayerMap[*model.PlayerState]

// DiceFaces is the wire form of both players' submitted face sets.
type DiceFaces = PlayerMap[[]int]

// DiceResults is the wire form of both players' selected roll values.
type DiceResults = PlayerMap[int]
