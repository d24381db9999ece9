package errors

import (
	"errors"
	"fmt"
)

// Common error types for the hospital client
var (
	// Session errors
	ErrNoSession         = errors.New("no active session")
	ErrIncompleteSession = errors.New("session requires both user and token")
	ErrSessionExpired    = errors.New("session expired")

	// Authorization errors
	ErrForbiddenRole    = errors.New("action not available for this role")
	ErrActionNotAllowed = errors.New("action not allowed for appointment status")
	ErrRequestInFlight  = errors.New("request already in progress")

	// Lookup errors
	ErrPatientNotFound = errors.New("no patient record for user")
	ErrDoctorNotFound  = errors.New("no doctor record for user")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
