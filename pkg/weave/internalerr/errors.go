package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingInput  = errors.New("missing required input")
	ErrInvalidConfig = errors.New("invalid configuration")
)
