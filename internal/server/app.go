// Package server initializes and runs the notes backend: it opens the
// database, migrates the schema, wires services onto the HTTP API and handles
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monotes/monotes/internal/logging"
	"github.com/monotes/monotes/internal/server/config"
	"github.com/monotes/monotes/internal/server/db"
	"github.com/monotes/monotes/internal/server/httpapi"
	"github.com/monotes/monotes/internal/server/repositories/repomanager"
	"github.com/monotes/monotes/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	database, err := db.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresManager()
	userService := services.NewUserService(database, m, c)
	noteService := services.NewNoteService(database, m)

	h := httpapi.NewHandler(userService, noteService, logger)
	router := httpapi.NewRouter(h, httpapi.RouterConfig{
		JWTSecret:          []byte(c.SecretKey),
		AuthRateLimitRPS:   c.AuthRateLimitRPS,
		AuthRateLimitBurst: c.AuthRateLimitBurst,
	})

	return &App{config: c, logger: logger, db: database, handler: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until the context is cancelled or a termination
// signal arrives, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)
	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	if err := app.db.Close(); err != nil {
		return fmt.Errorf("db close: %w", err)
	}

	app.logger.Info(ctx, "server stopped")
	return nil
}
