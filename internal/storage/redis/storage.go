package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateProfile(ctx context.Context, profile *model.Profile) error {
	id, err := s.client.Incr(ctx, profileIDCounterKey).Result()
	if err != nil {
		return err
	}
	profile.ID = model.PlayerID(id)

	return s.write(ctx, profile)
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	existing, err := s.GetProfile(ctx, profile.ID)
	if err != nil {
		return err
	}

	// Drop the stale email index entry if the email changed
	if existing.Email != profile.Email {
		if err := s.client.Del(ctx, emailIndexKey(existing.Email)).Err(); err != nil {
			return err
		}
	}

	return s.write(ctx, profile)
}

// write stores the profile record and its email index atomically
func (s *Storage) write(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, profileKey(profile.ID), data, 0)
	pipe.Set(ctx, emailIndexKey(profile.Email), strconv.FormatInt(int64(profile.ID), 10), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	idStr, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, model.PlayerID(id))
}
