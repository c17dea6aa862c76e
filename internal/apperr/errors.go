// Package apperr defines the user-facing error kinds shared by the handlers.
//
// Storage failures live next to the store (database.StorageError); the kinds
// here never change state and are always safe to show to the user verbatim.
package apperr

import "errors"

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError reports bad credentials or a missing session.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ErrNotAuthenticated is returned for protected actions without a session.
var ErrNotAuthenticated = &AuthError{Message: "Unauthorized"}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
