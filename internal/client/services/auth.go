// Package services contains the application services of the barbot client.
// This file defines the authentication state machine: it combines the session
// store and the request authenticator into one observable state.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/barbot/internal/client/auth"
	"github.com/dmitrijs2005/barbot/internal/client/client"
	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/client/session"
	"github.com/dmitrijs2005/barbot/internal/common"
	"github.com/dmitrijs2005/barbot/internal/logging"
)

const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
	msgAuthFailed         = "Failed to authenticate"
)

// Status is the coarse authentication state.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// State is a snapshot of the observable authentication surface.
//
// IsAuthenticated means a token is held. It turns true as soon as login
// returns a token, before User is resolved.
type State struct {
	Status          Status
	User            *models.UserProfile
	LastError       string
	InFlight        bool
	IsAuthenticated bool
}

// SessionStore is the subset of session.Store the state machine drives.
// Writes made for an operation are fenced on that operation's epoch.
type SessionStore interface {
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	Login(ctx context.Context, username, password string, fence session.Fence) (string, error)
	Register(ctx context.Context, reg models.Registration) (*models.UserProfile, error)
	FetchCurrentUser(ctx context.Context, token string, fence session.Fence) (*models.UserProfile, error)
}

// TokenBinder installs and revokes the credential on the outgoing transport.
type TokenBinder interface {
	Derive(token string) *auth.Registration
	Revoke()
}

// AuthService is the authentication state machine used by the UI shell.
//
// Contract:
//   - Start: rehydrate the persisted token, resolving the user if one exists.
//   - Login: Unauthenticated/Errored -> Authenticating -> Authenticated or Errored.
//   - Register: creates an account, never authenticates.
//   - Logout: always ends Unauthenticated with the token cleared.
//   - RefreshUser: re-fetches the profile; any failure forces a logout.
//
// Every method records failures in State().LastError and also returns them.
type AuthService interface {
	Start(ctx context.Context) error
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, reg models.Registration) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) error
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
}

type authService struct {
	store  SessionStore
	binder TokenBinder
	logger logging.Logger

	mu    sync.Mutex
	state State
	token string
	// epoch changes on every transition start and on logout; results of
	// calls begun under an older epoch are dropped, in memory and in storage.
	epoch       uint64
	subscribers map[int]func(State)
	nextSubID   int
}

// NewAuthService builds the state machine in the Unauthenticated state.
func NewAuthService(store SessionStore, binder TokenBinder, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{
		store:       store,
		binder:      binder,
		logger:      logger,
		subscribers: map[int]func(State){},
	}
}

func (a *authService) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *authService) Subscribe(fn func(State)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subscribers, id)
	}
}

func (a *authService) Start(ctx context.Context) error {
	token, err := a.store.Load(ctx)
	if err != nil {
		a.update(func(s *State) {
			s.Status = StatusErrored
			s.LastError = msgAuthFailed
		})
		return err
	}

	if token == "" {
		a.update(func(s *State) { s.Status = StatusUnauthenticated })
		return nil
	}

	epoch, _ := a.begin(anyStatus, func(*State) { a.token = token })
	a.binder.Derive(token)

	err = a.resolveUser(ctx, epoch, token)
	if errors.Is(err, client.ErrUnauthorized) {
		// a rejected stored token just means the session expired
		return nil
	}
	return err
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return common.ErrEmptyCredentials
	}

	epoch, ok := a.begin(loggedOut, nil)
	if !ok {
		return common.ErrInvalidTransition
	}

	token, err := a.store.Login(ctx, username, password, a.fence(epoch))
	if err != nil {
		a.finish(epoch, func(s *State) {
			s.Status = StatusErrored
			s.LastError = client.DetailOr(err, msgLoginFailed)
		})
		a.logger.Info(ctx, "login failed", "user", username, "error", err)
		return err
	}

	if !a.finish(epoch, func(s *State) {
		a.token = token
		s.InFlight = true
	}) {
		// logged out while the token was being issued
		return nil
	}
	a.binder.Derive(token)
	a.logger.Info(ctx, "login succeeded", "user", username)

	return a.resolveUser(ctx, epoch, token)
}

func (a *authService) Register(ctx context.Context, reg models.Registration) (*models.UserProfile, error) {
	epoch, ok := a.begin(loggedOut, nil)
	if !ok {
		return nil, common.ErrInvalidTransition
	}

	user, err := a.store.Register(ctx, reg)
	if err != nil {
		a.finish(epoch, func(s *State) {
			s.Status = StatusErrored
			s.LastError = client.DetailOr(err, msgRegistrationFailed)
		})
		a.logger.Info(ctx, "registration failed", "user", reg.Username, "error", err)
		return nil, err
	}

	a.finish(epoch, func(s *State) { s.Status = StatusUnauthenticated })
	a.logger.Info(ctx, "registration succeeded", "user", reg.Username)
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.epoch++
	a.token = ""
	a.state = State{Status: StatusUnauthenticated}
	snap, subs := a.snapshotLocked(), a.subscribersLocked()
	a.mu.Unlock()

	a.binder.Revoke()
	// the epoch is already bumped, so no earlier operation can write after this
	err := a.store.Clear(ctx)
	notify(subs, snap)

	a.logger.Info(ctx, "logged out")
	return err
}

func (a *authService) RefreshUser(ctx context.Context) error {
	a.mu.Lock()
	if a.state.Status != StatusAuthenticated {
		a.mu.Unlock()
		return common.ErrInvalidTransition
	}
	token, epoch := a.token, a.epoch
	a.state.InFlight = true
	snap, subs := a.snapshotLocked(), a.subscribersLocked()
	a.mu.Unlock()
	notify(subs, snap)

	user, err := a.store.FetchCurrentUser(ctx, token, a.fence(epoch))
	if err != nil {
		// the token was invalidated out of band
		if !a.finish(epoch, func(s *State) {
			a.token = ""
			*s = State{Status: StatusUnauthenticated}
		}) {
			a.logger.Debug(ctx, "stale user refresh dropped", "error", err)
			return nil
		}
		a.binder.Revoke()
		a.logger.Info(ctx, "session ended by user refresh", "error", err)
		return err
	}

	a.finish(epoch, func(s *State) { s.User = user })
	return nil
}

// resolveUser fetches the profile for a freshly held token and settles the
// machine in Authenticated, Unauthenticated or Errored.
func (a *authService) resolveUser(ctx context.Context, epoch uint64, token string) error {
	user, err := a.store.FetchCurrentUser(ctx, token, a.fence(epoch))
	if err != nil {
		unauthorized := errors.Is(err, client.ErrUnauthorized)
		if !a.finish(epoch, func(s *State) {
			a.token = ""
			*s = State{Status: StatusUnauthenticated}
			if !unauthorized {
				s.Status = StatusErrored
				s.LastError = client.DetailOr(err, msgAuthFailed)
			}
		}) {
			a.logger.Debug(ctx, "stale user fetch dropped", "error", err)
			return nil
		}
		a.binder.Revoke()
		a.logger.Info(ctx, "user fetch failed", "error", err)
		return err
	}

	if !a.finish(epoch, func(s *State) {
		s.Status = StatusAuthenticated
		s.User = user
		s.LastError = ""
	}) {
		return nil
	}
	a.logger.Info(ctx, "authenticated", "user", user.Username)
	return nil
}

// fence admits storage writes only while epoch is current.
func (a *authService) fence(epoch uint64) session.Fence {
	return func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.epoch == epoch
	}
}

func anyStatus(Status) bool { return true }

// loggedOut admits login and register attempts.
func loggedOut(s Status) bool {
	return s == StatusUnauthenticated || s == StatusErrored
}

// begin enters Authenticating with a call in flight and returns the new
// epoch. It does nothing and returns false when allow rejects the current
// status.
func (a *authService) begin(allow func(Status) bool, mutate func(s *State)) (uint64, bool) {
	a.mu.Lock()
	if !allow(a.state.Status) {
		a.mu.Unlock()
		return 0, false
	}
	a.epoch++
	epoch := a.epoch
	a.state.Status = StatusAuthenticating
	a.state.InFlight = true
	a.state.LastError = ""
	if mutate != nil {
		mutate(&a.state)
	}
	snap, subs := a.snapshotLocked(), a.subscribersLocked()
	a.mu.Unlock()

	notify(subs, snap)
	return epoch, true
}

// finish applies mutate and clears InFlight if epoch is still current.
// It reports whether the result was applied.
func (a *authService) finish(epoch uint64, mutate func(s *State)) bool {
	a.mu.Lock()
	if epoch != a.epoch {
		a.mu.Unlock()
		return false
	}
	a.state.InFlight = false
	mutate(&a.state)
	snap, subs := a.snapshotLocked(), a.subscribersLocked()
	a.mu.Unlock()

	notify(subs, snap)
	return true
}

// update applies mutate outside of any in-flight operation.
func (a *authService) update(mutate func(s *State)) {
	a.mu.Lock()
	a.epoch++
	mutate(&a.state)
	snap, subs := a.snapshotLocked(), a.subscribersLocked()
	a.mu.Unlock()

	notify(subs, snap)
}

func (a *authService) snapshotLocked() State {
	s := a.state
	s.IsAuthenticated = a.token != ""
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (a *authService) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}
