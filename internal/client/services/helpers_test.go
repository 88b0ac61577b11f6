package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"github.com/dmitrijs2005/barbot/internal/client/auth"
	"github.com/dmitrijs2005/barbot/internal/client/client"
	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/client/repositories/storage"
	"github.com/dmitrijs2005/barbot/internal/client/session"
	"github.com/dmitrijs2005/barbot/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return storage.NewSQLiteRepository(db)
}

func storedToken(t *testing.T, repo storage.Repository) (string, bool) {
	t.Helper()
	v, ok, err := repo.Get(context.Background(), common.TokenStorageKey)
	require.NoError(t, err)
	return v, ok
}

type authFixture struct {
	repo  *storage.SQLiteRepository
	api   *fakeClient
	authn *auth.Authenticator
	svc   AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := setupRepo(t)
	api := &fakeClient{}
	authn := auth.New(nil)
	store := session.NewStore(repo, api, nil)
	return &authFixture{repo: repo, api: api, authn: authn, svc: NewAuthService(store, authn, nil)}
}

// ---- fake client ----

// fakeClient implements client.Client for service tests. Calls are counted;
// UserHook, if set, runs before CurrentUser returns.
type fakeClient struct {
	mu sync.Mutex

	LoginToken string
	LoginErr   error

	RegisterErr error

	User     *models.UserProfile
	UserErr  error
	UserHook func()

	ChatResp json.RawMessage
	ChatErr  error
	ChatHook func(ctx context.Context)

	LoginCalls int
	UserCalls  int
	ChatCalls  int
	LastChat   []models.Message
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	return f.LoginToken, f.LoginErr
}

func (f *fakeClient) Register(_ context.Context, reg models.Registration) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return &models.UserProfile{Username: reg.Username, Email: reg.Email}, nil
}

func (f *fakeClient) CurrentUser(context.Context, string) (*models.UserProfile, error) {
	f.mu.Lock()
	f.UserCalls++
	hook, user, err := f.UserHook, f.User, f.UserErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return user, err
}

func (f *fakeClient) Chat(ctx context.Context, messages []models.Message) (json.RawMessage, error) {
	f.mu.Lock()
	f.ChatCalls++
	f.LastChat = messages
	hook, resp, err := f.ChatHook, f.ChatResp, f.ChatErr
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	return resp, err
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) calls() (login, user, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoginCalls, f.UserCalls, f.ChatCalls
}
