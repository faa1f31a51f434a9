package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cargoreligion/booking-client/config"
	"github.com/cargoreligion/booking-client/internal/services"
	"github.com/cargoreligion/booking-client/internal/storage"
	"github.com/cargoreligion/booking-client/internal/store"
	"github.com/cargoreligion/booking-client/pkg/booking"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"github.com/cargoreligion/booking-client/pkg/tracing"
	"go.uber.org/zap"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, "Error: failed to load configuration:", err)
		return 1
	}

	if err := logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.App.Env,
		ServiceName: cfg.Observability.ServiceName,
	}); err != nil {
		fmt.Fprintln(errOut, "Error: failed to initialize logger:", err)
		return 1
	}
	defer logger.Sync()

	shutdownTracer, err := tracing.InitTracer(cfg.Observability.ServiceName, version, cfg.App.Env, cfg.Observability.ExporterEndpoint)
	if err != nil {
		logger.Warn("Tracing unavailable", zap.Error(err))
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Push(ctx, cfg.Observability.PushgatewayURL, cfg.Observability.ServiceName); err != nil {
			logger.Warn("Failed to push metrics", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, closeStorage, err := storage.Open(ctx, storage.Options{
		Backend:        cfg.Storage.Backend,
		Dir:            cfg.Storage.Dir,
		RedisURL:       cfg.Storage.RedisURL,
		RedisKeyPrefix: cfg.Storage.RedisKeyPrefix,
	})
	if err != nil {
		fmt.Fprintln(errOut, "Error: failed to open storage:", err)
		return 1
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	client := booking.NewClient(cfg.API.BaseURL,
		booking.WithRateLimit(cfg.API.RateLimit, cfg.API.RateLimitBurst),
	)
	session := services.NewSessionService(
		store.NewIdentityStore(bridge, client),
		store.NewDirectoryStore(bridge),
		client,
	)
	session.Bootstrap(ctx)

	a := &app{
		ctx:     ctx,
		session: session,
		api:     client,
		out:     out,
		errOut:  errOut,
	}

	registry := NewCommandRegistry(VersionInfo{Version: version, Commit: commit, Date: date}, out, errOut)
	registerCommands(registry, a)

	if err := registry.Execute(args); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
