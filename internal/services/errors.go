package services

import "errors"

// Sentinel error kinds. Services wrap these with fmt.Errorf("%w: ...") so
// handlers can map them to HTTP statuses with errors.Is.
var (
	// ErrValidation covers malformed or out-of-range input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound covers missing vehicles, bookings, reviews and users.
	ErrNotFound = errors.New("not found")
	// ErrForbidden covers wrong-owner and wrong-role access.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState covers illegal booking status transitions.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict covers writes that would double-book a vehicle.
	ErrConflict = errors.New("booking conflict")
)
