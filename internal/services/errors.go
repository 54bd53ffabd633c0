package services

import "errors"

// Validation failures: malformed or missing input, correctable by the
// caller.
var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidPrice = errors.New("invalid price")
	ErrWeakPassword = errors.New("password does not meet the policy")
	ErrEmailTaken   = errors.New("email is already registered")
)

// Authentication failures. Unknown email and wrong password both map to
// ErrInvalidCredentials so callers cannot probe which part was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Business failures surfaced as not-found/forbidden/conflict at the
// transport boundary.
var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrForbidden       = errors.New("forbidden")
	ErrTripHasBookings = errors.New("trip has existing bookings")
)
