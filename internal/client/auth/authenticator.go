// Package auth attaches the bearer credential to outgoing backend calls.
//
// An Authenticator owns at most one live Registration. Deriving a
// registration for a new token revokes the previous one first, and a revoked
// registration never stamps another request. The package knows nothing about
// login state; it only tracks the current token value.
package auth

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/barbot/internal/common"
)

// Registration binds a single token to the transport.
type Registration struct {
	token   string
	revoked atomic.Bool
}

// Revoked reports whether the registration was torn down.
func (r *Registration) Revoked() bool {
	return r == nil || r.revoked.Load()
}

func (r *Registration) revoke() {
	if r != nil {
		r.revoked.Store(true)
	}
}

// Authenticator is an http.RoundTripper that adds an Authorization header
// carrying the token of the live registration, if any.
type Authenticator struct {
	base http.RoundTripper

	mu      sync.Mutex
	current *Registration
}

var _ http.RoundTripper = (*Authenticator)(nil)

// New wraps base. A nil base means http.DefaultTransport.
func New(base http.RoundTripper) *Authenticator {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Authenticator{base: base}
}

// Derive revokes the live registration and installs one for token.
// An empty token only revokes, and Derive returns nil.
func (a *Authenticator) Derive(token string) *Registration {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.current.revoke()
	a.current = nil

	if token == "" {
		return nil
	}
	a.current = &Registration{token: token}
	return a.current
}

// Revoke tears down the live registration. Calls made afterwards go out
// without a credential.
func (a *Authenticator) Revoke() {
	a.Derive("")
}

// Active reports whether a registration is currently installed.
func (a *Authenticator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.current.Revoked()
}

func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	a.mu.Lock()
	reg := a.current
	a.mu.Unlock()

	// an explicit header wins; CurrentUser checks a token that may not be live yet
	if reg.Revoked() || req.Header.Get(common.AuthorizationHeaderName) != "" {
		return a.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	r.Header.Set(common.AuthorizationHeaderName, common.BearerValue(reg.token))
	return a.base.RoundTrip(r)
}
