package model

import "errors"

// Common errors used across the application
var (
	// Engine errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrPlayerNotFound   = errors.New("player is not part of this session")
	ErrAlreadyQueued    = errors.New("connection is already waiting for a match")
	ErrInvalidPawnIndex = errors.New("pawn index out of range")
	ErrInvalidDiceFaces = errors.New("dice submission must have exactly 6 faces")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
)
