package client

import (
	"errors"
	"fmt"
)

// Failure kinds. Match with errors.Is; *ServerError unwraps to one of these.
var (
	// ErrUnavailable covers transport failures and server-side (5xx) errors.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the backend rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials means the token endpoint refused the login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationRejected means the backend refused to create the account.
	ErrRegistrationRejected = errors.New("registration rejected")
)

// ServerError describes a failed backend call.
type ServerError struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Status is the HTTP status code, 0 if no response was received.
	Status int
	// Detail is the backend-supplied reason, if any.
	Detail string
	// Cause is the underlying transport or decoding error, if any.
	Cause error
}

func (e *ServerError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Cause != nil:
		return e.Kind.Error() + ": " + e.Cause.Error()
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	default:
		return e.Kind.Error()
	}
}

func (e *ServerError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// DetailOr returns the backend-supplied reason carried by err, or fallback
// when there is none.
func DetailOr(err error, fallback string) string {
	var se *ServerError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return fallback
}
