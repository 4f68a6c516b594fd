package app

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// The message is shown to end users and must not enable account enumeration.
	ErrInvalidCredentials = errors.New("incorrect email address or password")

	ErrEmailAlreadyExists = errors.New("email already exists")

	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrConfirmationCodeConflict is returned when retries with fresh codes
	// still collide with the store's unique index.
	ErrConfirmationCodeConflict = errors.New("confirmation code already in use")
)

// ValidationError reports malformed or out-of-range input. Its message names
// the violated constraint.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
