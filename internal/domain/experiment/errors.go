package experiment

import "fmt"

// PairError attaches the subset and model identity to an evaluation failure.
type PairError struct {
	Subset string
	Model  string
	Err    error
}

// Error implements the error interface.
func (e *PairError) Error() string {
	return fmt.Sprintf("subset %q model %q: %v", e.Subset, e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *PairError) Unwrap() error { return e.Err }
