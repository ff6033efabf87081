package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"orderlens/internal/config"
	"orderlens/internal/dataprocessing"
	apierrors "orderlens/internal/errors"
	"orderlens/internal/infrastructure"
	custommw "orderlens/internal/middleware"
	"orderlens/internal/services"
	handlers "orderlens/internal/transport/http"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// Application wires configuration, the loaded dataset and the HTTP
// server together.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Dashboard *services.DashboardService
	Logger    *slog.Logger

	registry *prometheus.Registry
}

// NewApplication loads the configuration and dataset and assembles the
// router. The dataset is loaded exactly once; a load failure is fatal.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(ctx, cfg, logger)
}

// NewApplicationWithConfig assembles the application around an existing
// config and logger. Used directly by tests.
func NewApplicationWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	loader := dataprocessing.NewLoader(logger)
	dataset, err := loader.Load(ctx, cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load order dataset: %w", err)
	}

	analyzer := dataprocessing.NewAnalyzer(logger)
	presenter := dataprocessing.NewPresenter(logger, dataprocessing.PresenterConfig{
		Currency: cfg.Dataset.Currency,
		Locale:   cfg.Dataset.Locale,
		TopN:     cfg.Export.TopN,
	})
	dashboard := services.NewDashboardService(dataset, analyzer, presenter, logger)

	app := &Application{
		Config:    cfg,
		Dashboard: dashboard,
		Logger:    logger,
		registry:  prometheus.NewRegistry(),
	}
	app.Router = app.setupRouter(presenter, dataset.Len())
	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// setupRouter builds the middleware chain and mounts the handlers.
func (a *Application) setupRouter(presenter *dataprocessing.Presenter, records int) *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(custommw.StripSlashes)

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	metrics := custommw.NewRequestMetrics(a.registry)
	r.Use(metrics.Handler)

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, presenter, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Logger, Version, records)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/dashboard", dashboardHandler.Routes())
	})
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled
// or the server fails. Shutdown is graceful within the configured
// timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Logger.Info("shutting down server",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	infrastructure.CloseLogFile()

	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
