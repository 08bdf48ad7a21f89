// Package apperr defines the sentinel errors shared across LinkHub layers.
//
// Callers classify failures with errors.Is; context is attached by wrapping
// (fmt.Errorf("links: get %s: %w", id, apperr.ErrNotFound)). Any error that
// matches none of these sentinels is an opaque store failure.
package apperr

import "errors"

var (
	// ErrValidation marks missing or malformed caller input. Raised before
	// any store call is made.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced id or slug that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks a caller whose identity cannot be resolved or
	// who lacks a required scope (e.g. no department).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a caller who is known but may not act on the
	// target row.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a slug or short-code collision.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists marks an insert whose unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
)
