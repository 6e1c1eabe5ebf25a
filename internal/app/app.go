package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reportmill/internal/config"
	"github.com/reportmill/internal/mailer"
	"github.com/reportmill/internal/model"
	"github.com/reportmill/internal/render"
	"github.com/reportmill/internal/report"
	"github.com/reportmill/internal/store"
)

type contentStore interface {
	Load() (*model.Content, error)
	Save(content *model.Content) error
}

type reportFiler interface {
	SendDaily(content *model.Content) error
	SendWeekly(content *model.Content) error
}

// App owns the single in-memory Content record and wires the form
// handlers to the store, the renderer, and the mailer.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	store   contentStore
	mailer  *mailer.Mailer
	filer   reportFiler
	mu      sync.Mutex
	content *model.Content
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)

	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	contentStore := store.NewContentStore(cfg.ContentFile)
	content, err := contentStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	m := mailer.New(mailer.NewConfigFromSettings(&content.Settings))
	filer := report.NewFiler(render.Renderer{}, m, report.Paths{
		DailyTemplate:  cfg.DailyTemplate,
		WeeklyTemplate: cfg.WeeklyTemplate,
		ArchiveDir:     cfg.ArchiveDir,
	})

	return &App{
		config:  cfg,
		logger:  logger,
		store:   contentStore,
		mailer:  m,
		filer:   filer,
		content: content,
	}, nil
}

func (app *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	g.Go(func() error {
		app.logger.Info("serving report form", "addr", srv.Addr, "env", app.config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		app.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		// Mirror the close-time flush of the original form: the content
		// file always reflects the last state on exit.
		app.mu.Lock()
		defer app.mu.Unlock()
		return app.store.Save(app.content)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.logger.Info("stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	slog.SetDefault(logger)
	return logger
}
