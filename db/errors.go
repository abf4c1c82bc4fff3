package db

import "errors"

var (
	// ErrConstraintUnique is returned when an insert or update violates a
	// unique constraint (duplicate email, duplicate category title, queue
	// job dedup within a cooldown bucket).
	ErrConstraintUnique = errors.New("unique constraint violation")

	// ErrMissingFields is returned when a record lacks required fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrCodeMismatch is returned by guarded code-consuming updates when the
	// supplied code does not equal the stored one (including an already
	// consumed, now-cleared code).
	ErrCodeMismatch = errors.New("code mismatch")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)
