package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rcesaret/new-caledonia-commune-locator/config"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/api"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/auth"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/database"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/geodata"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/metrics"
	middlewares "github.com/rcesaret/new-caledonia-commune-locator/internal/middleware"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/ratelimit"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/resolver"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/store"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/tiles"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting commune locator",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database (optional dataset source)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Dataset sources in priority order
	var sources []geodata.Source
	if cfg.Dataset.Path != "" {
		sources = append(sources, &geodata.FileSource{Path: cfg.Dataset.Path, NameProperty: cfg.Dataset.NameProperty})
	}
	if cfg.Dataset.URL != "" {
		sources = append(sources, geodata.NewHTTPSource(cfg.Dataset.URL, cfg.Dataset.NameProperty, cfg.Dataset.FetchTimeout))
	}
	if db.IsConfigured() {
		sources = append(sources, &geodata.PostgresSource{DB: db})
	}

	dataset := geodata.NewDataset()
	loader := geodata.NewLoader(dataset, sources, cfg.Dataset.RefreshInterval, cfg.Dataset.FallbackEnabled)

	// Start dataset loader in background
	go func() {
		if err := loader.Run(ctx); err != nil {
			logger.Error("Dataset loader error", "error", err)
		}
	}()

	// Initialize session store and its TTL sweeper
	sessionStore := store.NewMemoryStore(cfg.Session.TTL, cfg.Session.MaxPoints)
	go sessionStore.RunSweeper(ctx, cfg.Session.SweepInterval)

	// Optional Redis-backed rate limiting; in-memory fallback otherwise
	var limiter *ratelimit.Manager
	if cfg.Redis.URL != "" {
		limiter, err = ratelimit.NewManager(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer limiter.Close()
	}

	verifier, err := auth.NewVerifier(cfg.Auth.Keys)
	if err != nil {
		logger.Fatal("Failed to load API keys", "error", err)
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS(cfg.Server.CORSAllowedOrigins))
	r.Use(middlewares.APIKeyAuth(cfg.Auth, verifier))
	if limiter != nil {
		r.Use(middlewares.RedisRateLimit(limiter, cfg.Session.RateLimitRPM))
	} else {
		r.Use(middlewares.RateLimit(cfg.Session.RateLimitRPM))
	}

	// Initialize API handlers
	prober := tiles.NewProber(cfg.Probe.TileServers, cfg.Probe.Timeout)
	apiHandler := api.NewHandler(sessionStore, db, dataset, resolver.New(dataset), prober, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
