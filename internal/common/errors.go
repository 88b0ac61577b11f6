package common

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the
	// current authentication state.
	ErrInvalidTransition = errors.New("operation not allowed in current state")

	// ErrEmptyCredentials is returned when a required credential field is blank.
	ErrEmptyCredentials = errors.New("username and password are required")
)
