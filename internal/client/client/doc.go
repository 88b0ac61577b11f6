// Package client contains the barbot backend transport.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Login, Register, CurrentUser, Chat and Ping.
//  2. A concrete HTTP/JSON implementation (see HTTPClient). Bearer credentials
//     are not handled here; callers pass an http.RoundTripper (normally an
//     auth.Authenticator) that stamps them. CurrentUser is the exception and
//     sets the header for the token it is asked to check.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite database and applies embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns a *ServerError whose Kind is one of the sentinel
// errors ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials or
// ErrRegistrationRejected, so callers can use errors.Is. The backend's
// "detail" message, when present, is the error text (see DetailOr).
//
// # Timeouts
//
// No request timeout is applied. Calls run until the backend answers, the
// connection fails, or the caller's context is cancelled.
package client
