package storage

import "errors"

// Sentinel errors for provider store operations.
var (
	// ErrNotFound is returned when a provider record does not exist.
	ErrNotFound = errors.New("provider not found")

	// ErrDuplicateName is returned when a create or update would reuse
	// an existing provider name. Names are compared case-sensitively.
	ErrDuplicateName = errors.New("provider name already exists")
)
