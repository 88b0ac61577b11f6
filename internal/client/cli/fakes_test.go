package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/client/render"
	"github.com/dmitrijs2005/barbot/internal/client/services"
	"github.com/dmitrijs2005/barbot/internal/logging"
)

type fakeAuth struct {
	state services.State

	regGot   models.Registration
	regErr   error
	regState services.State

	loginUser  string
	loginPass  string
	loginErr   error
	loginState services.State

	logoutCalled bool
	logoutErr    error

	refreshErr error
	startErr   error
	startState services.State
}

func (f *fakeAuth) Start(context.Context) error {
	f.state = f.startState
	return f.startErr
}
func (f *fakeAuth) Login(_ context.Context, user, pass string) error {
	f.loginUser, f.loginPass = user, pass
	f.state = f.loginState
	return f.loginErr
}
func (f *fakeAuth) Register(_ context.Context, reg models.Registration) (*models.UserProfile, error) {
	f.regGot = reg
	f.state = f.regState
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.UserProfile{Username: reg.Username, Email: reg.Email}, nil
}
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	f.state = services.State{Status: services.StatusUnauthenticated}
	return f.logoutErr
}
func (f *fakeAuth) RefreshUser(context.Context) error {
	if f.refreshErr != nil {
		f.state = services.State{Status: services.StatusUnauthenticated}
	}
	return f.refreshErr
}
func (f *fakeAuth) State() services.State                  { return f.state }
func (f *fakeAuth) Subscribe(func(services.State)) func() { return func() {} }

type fakeConversation struct {
	mu       sync.Mutex
	sent     []string
	accept   bool
	busy     bool
	messages []models.Message
}

func (f *fakeConversation) Send(_ context.Context, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.accept
}
func (f *fakeConversation) Messages() []models.Message    { return f.messages }
func (f *fakeConversation) Busy() bool                    { return f.busy }
func (f *fakeConversation) OnAppend(func(models.Message)) {}

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) Load(context.Context) (string, error) { return f.token, f.err }

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

// newTestApp builds an App that writes plain text into the returned buffer.
func newTestApp(authSvc services.AuthService, conv services.ConversationService) (*App, *bytes.Buffer) {
	var buf bytes.Buffer
	return &App{
		logger:       logging.Nop(),
		authService:  authSvc,
		conversation: conv,
		tokens:       fakeTokens{},
		out:          &buf,
		renderer:     render.New(&buf, render.Options{}),
	}, &buf
}
