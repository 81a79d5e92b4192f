package player

import (
	"errors"
	"fmt"
)

// PlayErrorCode categorizes rejected play requests.
type PlayErrorCode string

const (
	// ErrCodeEmptyName indicates the requested name was empty.
	ErrCodeEmptyName PlayErrorCode = "EMPTY_NAME"

	// ErrCodePhaseNotFound indicates the resolved name matches no phase.
	ErrCodePhaseNotFound PlayErrorCode = "PHASE_NOT_FOUND"
)

// PlayError reports a play request the player rejected. The player's state
// is unchanged when Play returns a PlayError.
type PlayError struct {
	Code PlayErrorCode

	// Requested is the name passed to Play.
	Requested string

	// Resolved is the phase name after jump resolution. It differs from
	// Requested only when a jump matched.
	Resolved string
}

// Error implements the error interface.
func (e *PlayError) Error() string {
	switch {
	case e.Code == ErrCodeEmptyName:
		return fmt.Sprintf("%s: no phase name given", e.Code)
	case e.Resolved != "" && e.Resolved != e.Requested:
		return fmt.Sprintf("%s: phase %q not found (jump from %q)", e.Code, e.Resolved, e.Requested)
	default:
		return fmt.Sprintf("%s: phase %q not found", e.Code, e.Requested)
	}
}

// IsEmptyNameError reports whether err is an EMPTY_NAME play error.
// Uses errors.As to handle wrapped errors.
func IsEmptyNameError(err error) bool {
	var pe *PlayError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeEmptyName
	}
	return false
}

// IsPhaseNotFoundError reports whether err is a PHASE_NOT_FOUND play error.
func IsPhaseNotFoundError(err error) bool {
	var pe *PlayError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodePhaseNotFound
	}
	return false
}
