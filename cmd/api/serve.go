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
	"time"

	"github.com/geocoder89/portal/internal/auth"
	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/db"
	httpx "github.com/geocoder89/portal/internal/http"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/geocoder89/portal/internal/ratelimit"
	"github.com/geocoder89/portal/internal/redisclient"
	"github.com/geocoder89/portal/internal/repo/postgres"
	"github.com/geocoder89/portal/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Initialise the database and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Load the config set up
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	hasher := security.NewHasher(cfg.BcryptCost)

	// connect, migrate, seed; exits non-zero once the retry budget is spent
	pool, err := db.Bootstrap(ctx, cfg, hasher, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	users := postgres.NewUsersRepo(pool, hasher, prom)
	assets := postgres.NewAssetsRepo(pool, prom)
	announcements := postgres.NewAnnouncementsRepo(pool, prom)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	authService, err := auth.NewService(users, hasher, tokens)
	if err != nil {
		return err
	}

	var loginCounter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rc.Close()

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pctx); err != nil {
			log.Warn("redis unreachable, login throttle falls open until it recovers", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()

		loginCounter = ratelimit.NewRedisCounter(rc.Raw(), "portal:rl:")
	}

	router := httpx.NewRouter(cfg, httpx.Deps{
		Log:           log,
		Prom:          prom,
		Gatherer:      reg,
		Auth:          authService,
		Tokens:        authService,
		Users:         users,
		Assets:        assets,
		Announcements: announcements,
		LoginCounter:  loginCounter,
		Ping:          pool.Ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}
