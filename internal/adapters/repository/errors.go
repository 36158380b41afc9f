package repository

import "errors"

// Sentinel kinds for event store errors.
var (
	ErrEmpty = errors.New("event store is empty")
)
