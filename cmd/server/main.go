package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/server/handlers"
	"github.com/iudanet/wordkeeper/internal/server/jwt"
	"github.com/iudanet/wordkeeper/internal/server/middleware"
	"github.com/iudanet/wordkeeper/internal/server/storage"
	"github.com/iudanet/wordkeeper/internal/server/storage/sqlite"
	"github.com/iudanet/wordkeeper/internal/server/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-version" || os.Args[1] == "--version") {
		printVersion()
		return
	}

	cfg, err := config.LoadServer(os.Args[1:], os.Getenv)
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, logger *slog.Logger) error {
	logger.Info("starting WordKeeper server",
		slog.String("version", Version),
		slog.String("addr", cfg.Address),
		slog.String("db", cfg.DatabasePath))

	store, err := sqlite.New(ctx, cfg.DatabasePath, sqlite.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	if cfg.SeedFile != "" {
		set, err := storage.LoadReferenceFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := store.ImportReference(ctx, set); err != nil {
			return fmt.Errorf("failed to import reference data: %w", err)
		}
		logger.Info("reference data imported", slog.Int("records", set.Len()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	engine := cascade.NewEngine(cascade.Default(), logger)
	service := sync.NewService(store, crdt.NewHybridClock(), engine, sync.NewMetrics(reg), logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.RequestTimeout*10, logger)
	defer limiter.Stop()

	router := handlers.Router{
		Auth:         handlers.NewAuthHandler(logger, store, tokens),
		Sync:         handlers.NewSyncHandler(logger, service),
		Health:       handlers.NewHealthHandler(logger, store, Version),
		Authenticate: middleware.Auth(logger, tokens),
		RateLimit:    limiter.Middleware,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	httpMetrics := middleware.NewHTTPMetrics(reg)
	srv := &http.Server{
		Addr: cfg.Address,
		Handler: middleware.Chain(router.Handler(),
			middleware.Recovery(logger),
			middleware.Logging(logger, "/api/v1/health", "/metrics"),
			httpMetrics.Instrument,
		),
		ReadHeaderTimeout: cfg.RequestTimeout,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", slog.String("addr", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func printVersion() {
	fmt.Printf("WordKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
