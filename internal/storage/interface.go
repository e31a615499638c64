package storage

import (
	"context"

	"github.com/dicematch/server/internal/model"
)

// Storage defines the interface for profile persistence
type Storage interface {
	// CreateProfile inserts a new profile and assigns its ID
	CreateProfile(ctx context.Context, profile *model.Profile) error

	// SaveProfile updates an existing profile by ID
	SaveProfile(ctx context.Context, profile *model.Profile) error

	// GetProfile fetches a profile by player ID
	GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error)

	// GetProfileByEmail fetches a profile by email
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
}
