package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. non-positive days count, empty destination).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller is not the owner of the trip
// they are trying to read, regenerate, or delete.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrRegenInProgress is returned when a regeneration request loses the race
// for a trip's regeneration lock. It is an expected, retryable conflict —
// the caller may try again once the current regeneration finishes or the
// lock TTL expires. Handlers should map this to HTTP 409.
var ErrRegenInProgress = errors.New("regeneration already in progress")

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// e.g. two catalog activities with the same (destination, name) pair.
// Handlers should map this to HTTP 409.
var ErrDuplicate = errors.New("already exists")
