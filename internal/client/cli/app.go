// Package cli is the interactive terminal front end of the notes client.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/monotes/monotes/internal/client/broadcast"
	"github.com/monotes/monotes/internal/client/config"
	"github.com/monotes/monotes/internal/client/localdb"
	"github.com/monotes/monotes/internal/client/remote"
	"github.com/monotes/monotes/internal/client/repositories/notes"
	"github.com/monotes/monotes/internal/client/services"
	"github.com/monotes/monotes/internal/client/store"
	"github.com/monotes/monotes/internal/client/syncer"
	"github.com/monotes/monotes/internal/client/whitelist"
	"github.com/monotes/monotes/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// App wires the local store, the sync engine and the remote client together
// and drives the REPL.
type App struct {
	config   *config.Config
	db       *sql.DB
	store    *store.Store
	remote   remote.Client
	engine   *syncer.Engine
	registry *syncer.Registry
	bus      *broadcast.Bus
	notes    *services.NoteService
	auth     *services.AuthService
	log      logging.Logger
	reader   *bufio.Reader

	mu         sync.Mutex
	mode       Mode
	activeID   string
	activeView *broadcast.View
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	zl, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	log := logging.NewZapLogger(zl)

	db, err := localdb.Open(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	st := store.New(notes.NewSQLiteRepository(db), store.WithLogger(log))

	rc := remote.NewHTTPClient(c.ServerEndpointAddr, remote.WithHTTPLogger(log))

	a := &App{
		config:   c,
		db:       db,
		store:    st,
		remote:   rc,
		registry: syncer.NewRegistry(),
		bus:      broadcast.NewBus(),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		mode:     ModeOffline,
	}

	a.engine = syncer.NewEngine(st, rc,
		syncer.WithQuietPeriod(c.QuietPeriod),
		syncer.WithDisplayWindow(c.SyncDisplayWindow),
		syncer.WithOnlineProbe(a.isOnline),
		syncer.WithEngineLogger(log),
	)

	wl := whitelist.New()
	a.notes = services.NewNoteService(st, rc, a.engine, wl,
		services.WithOnlineProbe(a.isOnline),
		services.WithLogger(log),
	)
	a.auth = services.NewAuthService(rc, log)

	return a, nil
}

func (a *App) isOnline() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode == ModeOnline
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.remote.CurrentUserID() != ""
}

// StartOnlineStatusWatcher periodically pings the server and flips the
// connectivity mode the sync engine consults before every attempt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.remote.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Run starts the watcher and the REPL, blocking until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// one immediate probe so the first commands see real connectivity
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.remote.Ping(pingCtx); err == nil {
		a.setMode(ctx, ModeOnline)
	}
	pingCancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)

	a.closeActiveView(ctx)
	a.engine.Close()
	_ = a.db.Close()
}
