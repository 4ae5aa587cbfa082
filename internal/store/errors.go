package store

import domainerrors "github.com/reachlyapp/reachly-server/internal/errors"

// Sentinel errors. They are domain errors, so errors.Is matches them against
// any domain error with the same code and handlers map them to statuses directly.
var (
	ErrNotFound          = domainerrors.NotFound("resource not found")
	ErrAlreadyExists     = domainerrors.AlreadyExists("resource already exists")
	ErrInvalidInput      = domainerrors.Validation("invalid input")
	ErrInsufficientFunds = domainerrors.InsufficientFunds("wallet balance too low")
	ErrConflict          = domainerrors.Conflict("conflicting update")
)
