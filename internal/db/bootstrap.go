package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/portal/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// WithRetry runs step until it succeeds, retrying at most retries times
// with a fixed pause. The last error is returned once the budget is spent.
func WithRetry(ctx context.Context, log *slog.Logger, retries uint64, backoff time.Duration, step func(ctx context.Context) error) error {
	attempt := 0

	b := retry.WithMaxRetries(retries, retry.NewConstant(backoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		err := step(ctx)
		if err == nil {
			return nil
		}

		log.WarnContext(ctx, "database init attempt failed",
			"attempt", attempt,
			"max_attempts", retries+1,
			"backoff", backoff.String(),
			"err", err,
		)

		return retry.RetryableError(err)
	})
}

// Bootstrap connects, migrates and seeds the admin account. The database may
// come up after this process, so every step is retried as a unit.
func Bootstrap(ctx context.Context, cfg config.Config, hasher PasswordHasher, log *slog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := WithRetry(ctx, log, cfg.DBInitRetries, cfg.DBInitBackoff, func(ctx context.Context) error {
		p, err := NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		if err := Migrate(ctx, p); err != nil {
			p.Close()
			return err
		}

		created, err := EnsureAdminUser(ctx, p, hasher, cfg)
		if err != nil {
			p.Close()
			return fmt.Errorf("seed admin: %w", err)
		}

		if created {
			log.InfoContext(ctx, "default admin seeded", "email", cfg.AdminEmail)
		}

		pool = p
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("database init failed after %d attempts: %w", cfg.DBInitRetries+1, err)
	}

	return pool, nil
}
