package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/config"
	"github.com/dmitrijs2005/gophsession/internal/client/session"
	"github.com/dmitrijs2005/gophsession/internal/client/storage"
	"github.com/dmitrijs2005/gophsession/internal/client/transport"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	session *session.Manager
	api     client.Client
	log     logging.Logger
	closer  io.Closer
	reader  *bufio.Reader
	out     io.Writer

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp opens the configured store, restores any saved session and builds
// the API client on top of the session's refresh coordinator.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel)

	store, closer, err := storage.Open(ctx, c.Storage())
	if err != nil {
		return nil, fmt.Errorf("error opening %s storage: %w", c.StorageBackend, err)
	}

	mgr := session.NewManager(
		session.WithStore(store),
		session.WithLogger(logger.With("component", "session")),
		session.WithAccessTokenTTL(c.AccessTokenTTL),
	)
	if err := mgr.Restore(ctx); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("error restoring session: %w", err)
	}

	coord := transport.NewCoordinator(mgr,
		transport.WithRefreshTimeout(c.RefreshTimeout),
		transport.WithCoordinatorLogger(logger.With("component", "refresh")),
		transport.WithOnRefreshFailure(func(ctx context.Context, err error) {
			mgr.Logout(ctx)
		}),
	)
	rt := transport.NewAuthTransport(http.DefaultTransport, coord, logger.With("component", "transport"))

	api, err := client.NewHTTPClient(c.ServerEndpointAddr, rt, c.RequestTimeout)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &App{
		config:  c,
		session: mgr,
		api:     api,
		log:     logger,
		closer:  closer,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

// Run blocks in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.closer.Close(); err != nil {
			a.log.Warn(ctx, "error closing storage", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	printlnFn("Welcome to gophsession CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// StartOnlineStatusWatcher pings the API every interval and flips Mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
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
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
