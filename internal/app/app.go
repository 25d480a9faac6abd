// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/safety-dashboard/internal/config"
	"github.com/bissquit/safety-dashboard/internal/dashboard"
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"github.com/bissquit/safety-dashboard/internal/pkg/httputil"
	"github.com/bissquit/safety-dashboard/internal/tui"
	"github.com/bissquit/safety-dashboard/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	logCloser     io.Closer
	controller    *dashboard.Controller
	server        *http.Server
	metricsServer *http.Server
}

// New creates a new application instance: it sets up logging, loads the seed
// incidents and, when enabled, prepares the read-only HTTP API.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, closer, err := initLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(logger)

	seed, err := incidents.NewSeedProvider(cfg.Dashboard.SeedPath).Incidents(ctx)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("load seed incidents: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    logger,
		logCloser: closer,
		controller: dashboard.NewController(seed, dashboard.Config{
			DefaultSeverity: domain.Severity(cfg.Dashboard.DefaultSeverity),
			DefaultSort:     domain.SortOrder(cfg.Dashboard.DefaultSort),
			Clock:           incidents.SystemClock,
			NewID:           incidents.NewUUIDGenerator(),
		}),
	}

	logger.Info("dashboard initialized",
		"incidents", len(seed),
		"seed_path", cfg.Dashboard.SeedPath,
		"server_enabled", cfg.Server.Enabled,
	)

	if !cfg.Server.Enabled {
		return app, nil
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers (if enabled) in the background and blocks on the
// terminal dashboard until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.server != nil {
		a.startServers()
	}

	return tui.Run(ctx, a.controller, tui.Options{
		SubmitDelay:  a.config.Dashboard.SubmitDelay,
		IntroDelay:   a.config.Dashboard.IntroDelay,
		DateFormat:   a.config.Dashboard.DateFormat,
		MouseEnabled: a.config.Dashboard.MouseEnabled,
	})
}

func (a *App) startServers() {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		a.logger.Info("starting server",
			"host", a.config.Server.Host,
			"port", a.config.Server.Port,
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", "error", err)
		}
	}()
}

// Shutdown gracefully shuts down the servers and closes the log file.
func (a *App) Shutdown(ctx context.Context) error {
	a.controller.Shutdown()

	var errs []error
	if a.server != nil {
		a.logger.Info("shutting down servers")

		var wg sync.WaitGroup
		var mu sync.Mutex

		for name, srv := range map[string]*http.Server{"server": a.server, "metrics server": a.metricsServer} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := srv.Shutdown(ctx); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("shutdown %s: %w", name, err))
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
	}

	if err := a.logCloser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}

	return errors.Join(errs...)
}

// Controller returns the dashboard controller.
func (a *App) Controller() *dashboard.Controller {
	return a.controller
}

// Router returns the HTTP handler for testing. It is nil when the server is disabled.
func (a *App) Router() http.Handler {
	if a.server == nil {
		return nil
	}
	return a.server.Handler
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.RateLimitMiddleware(a.config.Server.RateLimit, a.config.Server.RateBurst))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/version", a.versionHandler)

	handler := dashboard.NewHandler(a.controller)
	r.Route("/api/v1", handler.RegisterRoutes)

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// initLogger builds the slog logger. The terminal belongs to the dashboard, so
// output goes to cfg.File unless it is "-" (stderr).
func initLogger(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		out = f
		closer = f
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}
