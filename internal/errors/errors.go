package errors

import (
	"errors"
	"fmt"
)

// Common error types for the identity and link layer
var (
	// Session token errors
	ErrDecode       = errors.New("malformed session token")
	ErrTokenExpired = errors.New("token expired")
	ErrNoToken      = errors.New("no session token stored")

	// Login errors
	ErrAuthRejected   = errors.New("authentication rejected")
	ErrNetworkFailure = errors.New("network failure")

	// Link errors
	ErrMalformedLinkToken = errors.New("malformed link token")
	ErrInvalidEntityID    = errors.New("invalid entity id")
	ErrLinkUnavailable    = errors.New("invalid or expired link")

	// General errors
	ErrNotFound = errors.New("not found")
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

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
