package domain

import "errors"

// Error kinds wrapped by the service layer with %w and mapped to HTTP
// statuses at the handler boundary.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)
