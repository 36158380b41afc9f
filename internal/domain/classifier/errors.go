package classifier

import "errors"

// Sentinel errors for classifier operations.
var (
	ErrNotFitted  = errors.New("classifier is not fitted")
	ErrEmptyInput = errors.New("no training rows")
	ErrDimension  = errors.New("input dimension mismatch")
)
