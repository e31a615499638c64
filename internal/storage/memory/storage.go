package memory

import (
	"context"
	"sync"

	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	profiles   map[model.PlayerID]*model.Profile
	emailIndex map[string]model.PlayerID
	nextID     model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles:   make(map[model.PlayerID]*model.Profile),
		emailIndex: make(map[string]model.PlayerID),
		nextID:     1,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile.ID = s.nextID
	s.nextID++

	cp := *profile
	s.profiles[cp.ID] = &cp
	s.emailIndex[cp.Email] = cp.ID
	return nil
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.ID]
	if !ok {
		return model.ErrProfileNotFound
	}
	delete(s.emailIndex, existing.Email)

	cp := *profile
	s.profiles[cp.ID] = &cp
	s.emailIndex[cp.Email] = cp.ID
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	cp := *profile
	return &cp, nil
}

func (s *Storage) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	cp := *s.profiles[id]
	return &cp, nil
}
