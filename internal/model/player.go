package model

import "time"

// PlayerID uniquely identifies a player across the system.
// IDs are assigned by the profile store and are durable, unlike
// connection IDs which change on every reconnect.
type PlayerID int64

// Profile is a player's persisted account record.
type Profile struct {
	ID        PlayerID  `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Wins      int       `json:"win"`
	Losses    int       `json:"lose"`
	AvatarRef string    `json:"profilePicture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registered reports whether the profile has completed registration.
// A profile created implicitly (e.g. first sign-in) has no username yet.
func (p *Profile) Registered() bool {
	return p.Username != ""
}
