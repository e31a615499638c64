package model

import "time"

// SessionID uniquely identifies a live two-player session.
type SessionID string

// Color distinguishes the two sides of a session. The first player to
// have joined the queue plays blue, the second red.
type Color string

const (
	ColorBlue Color = "blue"
	ColorRed  Color = "red"
)

// PawnsPerPlayer is the fixed number of pawns each side races.
const PawnsPerPlayer = 4

// DiceFaceCount is the number of candidate faces a dice submission carries.
const DiceFaceCount = 6

// Pawn is one of a player's four race pieces. Slot identifies which of
// the four it is; it never changes after creation.
type Pawn struct {
	Color    Color        `json:"color"`
	Position PawnPosition `json:"position"`
	Slot     int          `json:"index"`
}

// PlayerState is one side's view of a session: identity snapshot, pawns,
// and the dice state for the current round. A roll result of 0 means the
// player has not rolled this round; all-zero dice faces mean no
// submission is pending.
type PlayerState struct {
	Name          string `json:"name"`
	AvatarRef     string `json:"profilePic,omitempty"`
	Color         Color  `json:"color"`
	Pawns         []Pawn `json:"pawnsState"`
	DiceFaces     []int  `json:"diceValues"`
	LastRoll      int    `json:"diceResult"`
	CapturesBonus int    `json:"bonus"`
}

// NewPlayerState builds the initial state for one side: four ready pawns,
// zeroed dice, no bonus.
func NewPlayerState(name, avatarRef string, color Color) *PlayerState {
	pawns := make([]Pawn, PawnsPerPlayer)
	for i := range pawns {
		pawns[i] = Pawn{Color: color, Position: ReadyPosition(), Slot: i}
	}
	return &PlayerState{
		Name:      name,
		AvatarRef: avatarRef,
		Color:     color,
		Pawns:     pawns,
		DiceFaces: make([]int, DiceFaceCount),
	}
}

// DiceSubmitted reports whether the player has a live dice submission,
// i.e. a 6-face set that is not all zeros.
func (ps *PlayerState) DiceSubmitted() bool {
	for _, v := range ps.DiceFaces {
		if v != 0 {
			return true
		}
	}
	return false
}

// ResetDice clears the dice submission and roll result for the next round.
func (ps *PlayerState) ResetDice() {
	for i := range ps.DiceFaces {
		ps.DiceFaces[i] = 0
	}
	ps.LastRoll = 0
}

// AllPawnsFinished reports whether every pawn has completed the track.
func (ps *PlayerState) AllPawnsFinished() bool {
	for _, p := range ps.Pawns {
		if !p.Position.IsFinished() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the player state.
func (ps *PlayerState) Clone() *PlayerState {
	cp := *ps
	cp.Pawns = make([]Pawn, len(ps.Pawns))
	copy(cp.Pawns, ps.Pawns)
	cp.DiceFaces = make([]int, len(ps.DiceFaces))
	copy(cp.DiceFaces, ps.DiceFaces)
	return &cp
}

// Session is one live two-player game. Players holds the two ids in join
// order; States maps each id to its side. CurrentTurn is always one of
// the two player ids.
type Session struct {
	ID          SessionID
	Players     [2]PlayerID
	States      map[PlayerID]*PlayerState
	CurrentTurn PlayerID
	CreatedAt   time.Time
}

// State returns the state for the given player, or nil if the player is
// not part of the session.
func (s *Session) State(id PlayerID) *PlayerState {
	return s.States[id]
}

// HasPlayer reports whether the given player belongs to the session.
func (s *Session) HasPlayer(id PlayerID) bool {
	return s.Players[0] == id || s.Players[1] == id
}

// Opponent returns the other player's id.
func (s *Session) Opponent(id PlayerID) PlayerID {
	if s.Players[0] == id {
		return s.Players[1]
	}
	return s.Players[0]
}

// BothDiceSubmitted reports whether both sides have a live submission
// this round.
func (s *Session) BothDiceSubmitted() bool {
	for _, id := range s.Players {
		if !s.States[id].DiceSubmitted() {
			return false
		}
	}
	return true
}

// AllDiceConsumed reports whether both sides' dice are back to all zeros,
// the checkpoint at which win detection runs.
func (s *Session) AllDiceConsumed() bool {
	for _, id := range s.Players {
		if s.States[id].DiceSubmitted() {
			return false
		}
	}
	return true
}

// Winner returns the first player in session order whose pawns have all
// finished, or false if neither side has.
func (s *Session) Winner() (PlayerID, bool) {
	for _, id := range s.Players {
		if s.States[id].AllPawnsFinished() {
			return id, true
		}
	}
	return 0, false
}

// Clone returns a deep copy, used to hand out consistent snapshots
// without exposing engine-owned state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.States = make(map[PlayerID]*PlayerState, len(s.States))
	for id, ps := range s.States {
		cp.States[id] = ps.Clone()
	}
	return &cp
}

// PawnMove relocates one or more of a player's pawns to the same
// destination. Slots index into the player's four pawns.
type PawnMove struct {
	PlayerID  PlayerID     `json:"userId"`
	PawnSlots []int        `json:"pawnsIndex"`
	From      PawnPosition `json:"fromNode"`
	To        PawnPosition `json:"toNode"`
}

// MovementBatch is the set of moves a client submits for one animation.
type MovementBatch []PawnMove
