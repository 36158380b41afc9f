package cache

import "errors"

var (
	// ErrCacheMiss is returned when the requested report is not cached.
	ErrCacheMiss = errors.New("cache: report not found")

	// ErrSerialization is returned when a report cannot be encoded or decoded.
	ErrSerialization = errors.New("cache: serialization failed")

	// ErrInvalidReport is returned when publishing a report without a run id.
	ErrInvalidReport = errors.New("cache: report has no run id")
)
