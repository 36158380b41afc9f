package source

import "errors"

// Sentinel errors for sources.
var (
	ErrMissingPath = errors.New("source: input path is required")
	ErrMissingDSN  = errors.New("source: postgres dsn is required")
)
