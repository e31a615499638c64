package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// positionKind discriminates the three states a pawn can be in.
type positionKind int

const (
	positionReady positionKind = iota
	positionTrack
	positionFinished
)

// PawnPosition is a pawn's location: waiting to enter the track ("ready"),
// on a track node (numeric index), or past the goal ("finished").
//
// The zero value is the ready position. On the wire it is encoded the way
// clients expect: the JSON string "ready" or "finished", or a bare JSON
// number for a track index.
type PawnPosition struct {
	kind  positionKind
	index int
}

// ReadyPosition returns the position of a pawn that has not entered the track.
func ReadyPosition() PawnPosition {
	return PawnPosition{kind: positionReady}
}

// FinishedPosition returns the position of a pawn that completed the track.
func FinishedPosition() PawnPosition {
	return PawnPosition{kind: positionFinished}
}

// TrackPosition returns the position of a pawn on track node index.
func TrackPosition(index int) PawnPosition {
	return PawnPosition{kind: positionTrack, index: index}
}

// IsReady reports whether the pawn has not yet entered the track.
func (p PawnPosition) IsReady() bool {
	return p.kind == positionReady
}

// IsFinished reports whether the pawn has completed the track.
func (p PawnPosition) IsFinished() bool {
	return p.kind == positionFinished
}

// TrackIndex returns the track node index and whether the pawn is on the track.
func (p PawnPosition) TrackIndex() (int, bool) {
	if p.kind != positionTrack {
		return 0, false
	}
	return p.index, true
}

// String implements fmt.Stringer, mirroring the wire form.
func (p PawnPosition) String() string {
	switch p.kind {
	case positionReady:
		return "ready"
	case positionFinished:
		return "finished"
	default:
		return strconv.Itoa(p.index)
	}
}

// MarshalJSON encodes the position as "ready", "finished" or a number.
func (p PawnPosition) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case positionTrack:
		return json.Marshal(p.index)
	default:
		return json.Marshal(p.String())
	}
}

// UnmarshalJSON decodes the wire form back into a position.
func (p *PawnPosition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "ready":
			*p = ReadyPosition()
			return nil
		case "finished":
			*p = FinishedPosition()
			return nil
		default:
			return fmt.Errorf("invalid pawn position %q", s)
		}
	}

	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("invalid pawn position: %s", data)
	}
	*p = TrackPosition(idx)
	return nil
}
