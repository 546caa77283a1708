package repository

import "errors"

var (
	// ErrNotFound is returned when an update or delete matched no rows.
	ErrNotFound = errors.New("record not found")

	// ErrLimitReached is returned by conditional invoice inserts when the
	// owner's invoice count already meets the plan limit.
	ErrLimitReached = errors.New("invoice limit reached")
)
