package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/barbot/internal/client/auth"
	"github.com/dmitrijs2005/barbot/internal/client/client"
	"github.com/dmitrijs2005/barbot/internal/client/config"
	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/client/render"
	"github.com/dmitrijs2005/barbot/internal/client/repositories/storage"
	"github.com/dmitrijs2005/barbot/internal/client/services"
	"github.com/dmitrijs2005/barbot/internal/client/session"
	"github.com/dmitrijs2005/barbot/internal/filex"
	"github.com/dmitrijs2005/barbot/internal/logging"
	"golang.org/x/term"
)

const dbFileName = "barbot.db"

// pingTimeout bounds a single liveness probe of the status watcher.
const pingTimeout = 3 * time.Second

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pinger is the liveness half of client.Client.
type pinger interface {
	Ping(ctx context.Context) error
}

// tokenSource reads the persisted token for display purposes.
type tokenSource interface {
	Load(ctx context.Context) (string, error)
}

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	authService  services.AuthService
	conversation services.ConversationService
	pinger       pinger
	tokens       tokenSource
	renderer     *render.Renderer
	out          io.Writer
	reader       *bufio.Reader

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp wires local storage, the backend client and the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	authn := auth.New(nil)
	api := client.NewHTTPClient(c.ServerURL, authn, logger)
	store := session.NewStore(storage.NewSQLiteRepository(db), api, logger)

	a := &App{
		config:       c,
		logger:       logger,
		db:           db,
		authService:  services.NewAuthService(store, authn, logger),
		conversation: services.NewConversationService(api, logger),
		pinger:       api,
		tokens:       store,
		out:          os.Stdout,
		reader:       bufio.NewReader(os.Stdin),
		renderer: render.New(os.Stdout, render.Options{
			Width: c.RenderWidth,
			Color: term.IsTerminal(int(os.Stdout.Fd())),
		}),
	}
	a.wire()
	return a, nil
}

// wire subscribes the shell to service events.
func (a *App) wire() {
	a.authService.Subscribe(func(s services.State) {
		a.logger.Debug(context.Background(), "auth state", "status", s.Status, "in_flight", s.InFlight, "authenticated", s.IsAuthenticated)
	})
	a.conversation.OnAppend(a.showMessage)
}

func (a *App) showMessage(m models.Message) {
	fmt.Fprintln(a.out, a.renderer.Message(m))
	if m.Role == models.RoleUser {
		fmt.Fprintln(a.out, a.renderer.Notice("Barbot is thinking..."))
	}
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.authService.State().IsAuthenticated
}

// StartOnlineStatusWatcher probes the backend every interval and flips Mode.
// It never retries chat or auth calls; it only reports reachability.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.pinger.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
