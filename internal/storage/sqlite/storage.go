// Package sqlite provides a SQLite-backed profile storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	email           TEXT NOT NULL UNIQUE,
	username        TEXT NOT NULL DEFAULT '',
	wins            INTEGER NOT NULL DEFAULT 0,
	losses          INTEGER NOT NULL DEFAULT 0,
	avatar_ref      TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
`

// Storage persists profiles in SQLite.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens a SQLite profile store at path and ensures the schema exists.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) CreateProfile(ctx context.Context, profile *model.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (email, username, wins, losses, avatar_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.Email,
		profile.Username,
		profile.Wins,
		profile.Losses,
		profile.AvatarRef,
		toMillis(profile.CreatedAt),
		toMillis(profile.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read profile id: %w", err)
	}
	profile.ID = model.PlayerID(id)
	return nil
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles
		 SET email = ?, username = ?, wins = ?, losses = ?, avatar_ref = ?, updated_at = ?
		 WHERE id = ?`,
		profile.Email,
		profile.Username,
		profile.Wins,
		profile.Losses,
		profile.AvatarRef,
		toMillis(profile.UpdatedAt),
		int64(profile.ID),
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, wins, losses, avatar_ref, created_at, updated_at
		 FROM profiles WHERE id = ?`, int64(id))
	return scanProfile(row)
}

func (s *Storage) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, wins, losses, avatar_ref, created_at, updated_at
		 FROM profiles WHERE email = ?`, email)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var (
		profile              model.Profile
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.Username,
		&profile.Wins,
		&profile.Losses,
		&profile.AvatarRef,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	profile.CreatedAt = fromMillis(createdAt)
	profile.UpdatedAt = fromMillis(updatedAt)
	return &profile, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
