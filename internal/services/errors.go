package services

import (
	"errors"
)

// Error kinds returned by the services. Handlers match these with
// errors.Is to pick a status code; anything else is a generic failure.
var (
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("already exists")
	ErrNotFound   = errors.New("not found")
	ErrGateway    = errors.New("market data unavailable")
	ErrStore      = errors.New("storage failure")
)
