package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and adapters.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// APIError carries a backend error response: the HTTP status and the
// best-effort human-readable message extracted from the body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Is maps 401 responses onto ErrUnauthorized so callers can dispatch
// with errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
