package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"surveybench/internal/cache"
	"surveybench/internal/config"
	"surveybench/internal/dataprocessing"
	apierrors "surveybench/internal/errors"
	"surveybench/internal/exporter"
	"surveybench/internal/infrastructure"
	customMiddleware "surveybench/internal/middleware"
	"surveybench/internal/services"
	"surveybench/internal/specialty"
	"surveybench/internal/store"
	handlers "surveybench/internal/transport/http"
	ws "surveybench/internal/websocket"
)

const (
	VERSION = "v1.0.0"
	AppName = "surveybench"
)

// BuildTime is set at compile time
var BuildTime = time.Now().Format(time.RFC3339)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         store.Store
	Cache         *cache.Cache
	WebSocketHub  *ws.Hub
	Benchmark     *services.BenchmarkService
	Mappings      *services.MappingService
	Health        *services.HealthService
	Exporter      *exporter.Exporter
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Runtime       *infrastructure.RuntimeCollector
	Logger        *slog.Logger
}

// NewApplication creates a new application instance with dependency
// injection. The survey store is provided by the caller; the dev server
// seeds an in-memory store, production wires the real persistence layer.
func NewApplication(st store.Store) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Store:         st,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if otelProviders.Meter != nil {
		metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		app.Metrics = metrics

		collector, err := infrastructure.NewRuntimeCollector(otelProviders.Meter, 30*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to create runtime metrics collector: %w", err)
		}
		app.Runtime = collector
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.Cache = cache.New(a.Config.Benchmark.CacheTTL, a.Logger)

	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.WebSocketHub = hub

	synonyms := specialty.DefaultSynonyms()
	if path := a.Config.Benchmark.SynonymFile; path != "" {
		loaded, err := specialty.LoadSynonyms(path)
		if err != nil {
			return fmt.Errorf("failed to load synonym table: %w", err)
		}
		synonyms = loaded
	}
	matcher := specialty.NewMatcher(synonyms, a.Logger)

	normalizer := dataprocessing.NewNormalizer(a.Logger)

	a.Benchmark = services.NewBenchmarkService(a.Store, a.Cache, normalizer, a.Logger,
		services.WithMetrics(a.Metrics),
		services.WithPageSize(a.Config.Benchmark.SurveyPageSize))

	a.Mappings = services.NewMappingService(a.Store, matcher, a.Cache, a.Logger,
		services.WithRefreshNotifier(hub),
		services.WithMappingMetrics(a.Metrics))

	a.Health = services.NewHealthService(VERSION, BuildTime, a.Store, a.Cache, hub, a.Logger)

	a.Exporter = exporter.New(a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that won't interfere with the WebSocket upgrade.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// WebSocket route with minimal middleware and tracing.
	wsHandler := handlers.NewWebSocketHandler(
		a.WebSocketHub,
		a.Config.WebSocket,
		a.Config.Security.AllowedOrigins,
		a.Logger,
	)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Get("/ws", wsHandler.ServeWS)

	// Everything else runs under the full middleware stack.
	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.BusinessMetricsMiddleware(a.Metrics))

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint stays outside the middleware group.
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
	r.Get("/metrics", metricsHandler.Prometheus)

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		healthHandler.RegisterRoutes(r)

		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
		metricsHandler.RegisterRoutes(r)

		benchmarkHandler := handlers.NewBenchmarkHandler(a.Benchmark, a.Exporter, a.WebSocketHub, a.Metrics, a.Logger)
		benchmarkHandler.RegisterRoutes(r)

		// Mapping mutations carry an audit trail.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuditLog(a.Logger))
			mappingHandler := handlers.NewMappingHandler(a.Mappings, a.Logger)
			mappingHandler.RegisterRoutes(r)
		})
	})
}

// getCORSConfig returns the CORS configuration.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and background services.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if a.Runtime != nil {
		go a.Runtime.Start(ctx)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()

	if a.Runtime != nil {
		a.Runtime.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
