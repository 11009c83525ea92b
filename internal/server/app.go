// Package server initializes and runs the wardrobe application server.
// It wires configuration, storage, mail and object storage into the HTTP
// endpoint and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/avolkov/wardrobe/internal/logging"
	"github.com/avolkov/wardrobe/internal/server/auth"
	"github.com/avolkov/wardrobe/internal/server/catalog"
	"github.com/avolkov/wardrobe/internal/server/config"
	"github.com/avolkov/wardrobe/internal/server/httpapi"
	"github.com/avolkov/wardrobe/internal/server/mail"
	"github.com/avolkov/wardrobe/internal/server/media"
	"github.com/avolkov/wardrobe/internal/server/shared/db"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = 1 * time.Hour
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  db.RepositoryManager

	authService    *auth.Service
	catalogService *catalog.Service
	httpServer     *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	storage, err := media.NewS3Storage(cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	var mailer mail.Mailer
	if cfg.BrevoAPIKey != "" {
		mailer = mail.NewBrevoMailer(cfg.BrevoAPIKey, cfg.SenderName(), cfg.SenderAddress())
	} else {
		mailer = mail.NewDevMailer(logger)
	}

	as := auth.NewService(rm.Users(), rm.Tokens(), rm.Sessions(), rm.Dresses(), rm.Sections(), storage, mailer, logger, cfg)
	cs := catalog.NewService(rm.Sections(), rm.Dresses(), rm.Feedback(), storage, mailer, logger, cfg)

	if err := cs.SeedDefaults(context.Background()); err != nil {
		return nil, fmt.Errorf("seeding error: %w", err)
	}

	hs := httpapi.NewServer(cfg, logger, as, cs, rm.Sessions())

	return &App{
		config:         cfg,
		logger:         logger,
		repos:          rm,
		authService:    as,
		catalogService: cs,
		httpServer:     hs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.httpServer.Router(),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "error shutting down http server", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// startPurgeLoop periodically drops expired tokens and sessions. Expired
// rows are already invisible to lookups, this just keeps the tables small.
func (app *App) startPurgeLoop(ctx context.Context) {

	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	type expiryPurger interface {
		PurgeExpired(ctx context.Context) (int64, error)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := app.repos.Tokens().PurgeExpired(ctx); err != nil {
				app.logger.Warn(ctx, "token purge failed", "error", err)
			} else if n > 0 {
				app.logger.Info(ctx, "expired tokens purged", "count", n)
			}

			if p, ok := app.repos.Sessions().(expiryPurger); ok {
				if n, err := p.PurgeExpired(ctx); err != nil {
					app.logger.Warn(ctx, "session purge failed", "error", err)
				} else if n > 0 {
					app.logger.Info(ctx, "expired sessions purged", "count", n)
				}
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startPurgeLoop(ctx)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "error closing repositories", "error", err)
	}
}
