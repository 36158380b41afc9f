package reportstore

import "errors"

var (
	// ErrNotFound is returned when no run has the requested id.
	ErrNotFound = errors.New("reportstore: run not found")

	// ErrMissingDSN is returned by Open without a connection string.
	ErrMissingDSN = errors.New("reportstore: missing dsn")

	// ErrInvalidReport is returned when saving a report without a run id.
	ErrInvalidReport = errors.New("reportstore: report has no run id")
)
