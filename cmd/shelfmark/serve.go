package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/shelfmark/shelfmark-go/internal/config"
	"github.com/shelfmark/shelfmark-go/internal/crypto"
	"github.com/shelfmark/shelfmark-go/internal/logging"
	"github.com/shelfmark/shelfmark-go/internal/metrics"
	"github.com/shelfmark/shelfmark-go/internal/middleware"
	"github.com/shelfmark/shelfmark-go/internal/repository"
	"github.com/shelfmark/shelfmark-go/internal/router"
)

const (
	connectTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. The store is connected before the listener
opens; a failed connection aborts startup.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(); err != nil {
		return oops.Code("CONFIG_INVALID").With("path", envFile).Wrap(err)
	}

	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logging.SetDefault(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.Addr()).Wrap(err)
	}

	return serve(ctx, cfg, ln)
}

// serve runs the API on ln until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, cfg config.Config, ln net.Listener) error {
	defer ln.Close()

	hasher, err := crypto.NewHasher(cfg.HashWorkers)
	if err != nil {
		return oops.Code("STARTUP_FAILED").With("operation", "create hasher").Wrap(err)
	}
	tokens, err := crypto.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	dial, err := dialerFor(cfg)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	store := repository.NewLazy(dial)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	_, err = store.Connect(connectCtx)
	cancel()
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("driver", cfg.StoreDriver).Wrap(err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Error("closing store", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterMetrics(reg)

	handler, err := router.New(router.Deps{
		Store:  store,
		Hasher: hasher,
		Tokens: tokens,
		CORS: middleware.CORSOptions{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			OriginPatterns: cfg.CORSOriginPatterns,
		},
		Metrics: reg,
	})
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", ln.Addr().String(), "env", cfg.Env, "store", cfg.StoreDriver)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}

	slog.Info("server stopped")
	return nil
}

// dialerFor picks the store implementation named by the configuration.
func dialerFor(cfg config.Config) (repository.Dialer, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		return repository.DialMySQL(cfg.DatabaseDSN), nil
	case config.DriverMongo:
		return repository.DialMongo(cfg.MongoURL, cfg.MongoDB), nil
	case config.DriverMemory:
		if cfg.Env == "production" {
			return nil, fmt.Errorf("store driver %q is not allowed in production", cfg.StoreDriver)
		}
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.DialMemory(repository.NewMemoryUserRepository()), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
