// utils/errors.go
package utils

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrSlotConflict       = errors.New("time slot already booked")
	ErrDuplicateBooking   = errors.New("booking id already exists")
	ErrNotFound           = errors.New("record not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet the minimum length")
)

// ValidationError describes a rejected input field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
