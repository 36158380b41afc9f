package service

import "errors"

// ErrNoSource is returned by Run when the service has no input source.
var ErrNoSource = errors.New("service: no input source configured")
