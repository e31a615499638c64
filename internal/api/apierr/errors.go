// Package apierr maps domain errors to JSON error responses.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dicematch/server/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeAlreadyQueued    = "ALREADY_QUEUED"
	CodeInvalidPawnIndex = "INVALID_PAWN_INDEX"
	CodeInvalidDiceFaces = "INVALID_DICE_FACES"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidFileType  = "INVALID_FILE_TYPE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Profile not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Game session not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrAlreadyQueued):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyQueued, "Already waiting for a match"}}
	case errors.Is(err, model.ErrInvalidPawnIndex):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPawnIndex, "Pawn index out of range"}}
	case errors.Is(err, model.ErrInvalidDiceFaces):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDiceFaces, "A dice submission needs exactly six faces"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewFileTooLargeError creates an upload size error
func NewFileTooLargeError(message string) error {
	return &httpError{http.StatusRequestEntityTooLarge, APIError{CodeFileTooLarge, message}}
}

// NewInvalidFileTypeError creates an unsupported upload type error
func NewInvalidFileTypeError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidFileType, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
