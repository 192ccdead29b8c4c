package models

import "errors"

// Error taxonomy shared by repositories, services and handlers.
// Callers match with errors.Is; wrapping only adds context.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidDate       = errors.New("date is in the past")
	ErrCapacityExceeded  = errors.New("guest count exceeds venue capacity")
	ErrConflict          = errors.New("date already booked")
	ErrNotFound          = errors.New("not found")
	ErrPhoneMismatch     = errors.New("phone number does not match booking")
	ErrExpired           = errors.New("verification code expired")
	ErrMismatch          = errors.New("verification code mismatch")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDeliveryFailed    = errors.New("notification delivery failed")
)
