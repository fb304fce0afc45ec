package store

import "errors"

// Write errors
var (
	// ErrMissingParent is returned when writing below a path whose parent
	// currently resolves to Missing.
	ErrMissingParent = errors.New("cannot modify state: parent state is missing")

	// ErrNotContainer is returned when slicing into a value that holds no keys.
	ErrNotContainer = errors.New("value is not a container")

	// ErrInvalidKey is returned when a key does not fit the container type.
	ErrInvalidKey = errors.New("invalid key")

	// ErrTypeMismatch is returned when a value cannot be stored in the slot
	// it is written to.
	ErrTypeMismatch = errors.New("type mismatch")
)
