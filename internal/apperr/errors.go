// Package apperr defines the sentinel errors shared across services.
// Every component failure maps to exactly one of these before it reaches
// a caller.
package apperr

import "errors"

var (
	// ErrNotFound covers both a missing record and a record owned by
	// someone else; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation (duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned for an unknown email and for a
	// wrong password alike, so login failures carry no enumeration signal.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidInput signals missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
)
