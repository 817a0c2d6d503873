package domain

import "errors"

// Sentinel errors raised by the services. The HTTP boundary maps them to
// status codes with errors.Is; everything else surfaces as a 500.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrEmailTaken      = errors.New("email is taken")
	ErrNotAvailable    = errors.New("item is not available")
	ErrInvalidInterval = errors.New("start must precede end")
	ErrNeverRented     = errors.New("no completed booking of this item")
)
