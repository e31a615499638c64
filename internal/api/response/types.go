// Package response holds API response types and writers.
package response

import (
	"github.com/dicematch/server/internal/model"
)

// User represents a player profile in API responses
type User struct {
	ID             model.PlayerID `json:"id,omitempty"`
	Email          string         `json:"email"`
	Username       string         `json:"username"`
	Wins           int            `json:"win"`
	Losses         int            `json:"lose"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	Registered     bool           `json:"registered"`
}

// UserFromProfile converts a model.Profile to a response User
func UserFromProfile(p *model.Profile) User {
	return User{
		ID:             p.ID,
		Email:          p.Email,
		Username:       p.Username,
		Wins:           p.Wins,
		Losses:         p.Losses,
		ProfilePicture: p.AvatarRef,
		Registered:     p.Registered(),
	}
}

// UnregisteredUser is the placeholder returned for an email that has no
// profile yet. Lookups for unknown users succeed with this shape so the
// client can drive its registration flow off Registered alone.
func UnregisteredUser(email string) User {
	return User{
		Email:      email,
		Registered: false,
	}
}
