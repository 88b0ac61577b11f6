// Package session owns the access token and the calls that produce or
// invalidate it.
//
// The token lives under a single key in durable storage. Login and a
// successful user fetch are the only writers; Clear, Logout paths and a
// failed user fetch remove it. Writes made on behalf of an operation pass a
// Fence, so an operation that has been superseded cannot touch storage.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/barbot/internal/client/client"
	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/client/repositories/storage"
	"github.com/dmitrijs2005/barbot/internal/common"
	"github.com/dmitrijs2005/barbot/internal/logging"
)

// Fence reports whether a write for an operation may still land. It is
// checked under the store's write lock; a nil Fence always admits.
type Fence func() bool

func (f Fence) admits() bool {
	return f == nil || f()
}

// Store persists the token and proxies the identity calls of the backend.
type Store struct {
	repo   storage.Repository
	api    client.Client
	logger logging.Logger

	// mu orders writes, so a fenced write is never interleaved with a Clear.
	mu sync.Mutex
}

// NewStore builds a Store over repo and api.
func NewStore(repo storage.Repository, api client.Client, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{repo: repo, api: api, logger: logger}
}

// Load returns the persisted token, or "" when none exists. It never calls
// the network.
func (s *Store) Load(ctx context.Context) (string, error) {
	token, ok, err := s.repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Persist writes token. An empty token is the same as Clear.
func (s *Store) Persist(ctx context.Context, token string) error {
	return s.persist(ctx, token, nil)
}

// Clear removes the persisted token.
func (s *Store) Clear(ctx context.Context) error {
	return s.clear(ctx, nil)
}

func (s *Store) persist(ctx context.Context, token string, fence Fence) error {
	if token == "" {
		return s.clear(ctx, fence)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !fence.admits() {
		s.logger.Debug(ctx, "superseded token write dropped")
		return nil
	}
	if err := s.repo.Set(ctx, common.TokenStorageKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.logToken(ctx, "token persisted", token)
	return nil
}

func (s *Store) clear(ctx context.Context, fence Fence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fence.admits() {
		s.logger.Debug(ctx, "superseded token clear dropped")
		return nil
	}
	if err := s.repo.Delete(ctx, common.TokenStorageKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.logger.Debug(ctx, "token cleared")
	return nil
}

// Login exchanges credentials for a token and persists it if fence still
// admits the write. The token is returned either way.
func (s *Store) Login(ctx context.Context, username, password string, fence Fence) (string, error) {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx, token, fence); err != nil {
		return "", err
	}
	return token, nil
}

// Register creates an account. The session is left as it was.
func (s *Store) Register(ctx context.Context, reg models.Registration) (*models.UserProfile, error) {
	return s.api.Register(ctx, reg)
}

// FetchCurrentUser resolves the profile behind token. On success the token
// is persisted, on any failure it is cleared; both writes are subject to
// fence. The fetch error wins over a storage error on the failure path.
func (s *Store) FetchCurrentUser(ctx context.Context, token string, fence Fence) (*models.UserProfile, error) {
	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		if cerr := s.clear(ctx, fence); cerr != nil {
			s.logger.Warn(ctx, "could not clear rejected token", "error", cerr)
		}
		return nil, err
	}
	if err := s.persist(ctx, token, fence); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) logToken(ctx context.Context, msg, token string) {
	info, err := Inspect(token)
	if err != nil {
		s.logger.Debug(ctx, msg, "token", "opaque")
		return
	}
	s.logger.Debug(ctx, msg, "subject", info.Subject, "expires_at", info.ExpiresAt)
}
