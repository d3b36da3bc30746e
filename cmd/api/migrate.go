package main

import (
	"context"
	"fmt"

	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/db"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/geocoder89/portal/internal/security"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg := config.Load()
			log := observability.NewLogger(cfg.Env)

			err := db.WithRetry(ctx, log, cfg.DBInitRetries, cfg.DBInitBackoff, func(ctx context.Context) error {
				pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
				if err != nil {
					return fmt.Errorf("connect: %w", err)
				}
				defer pool.Close()

				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}

				if !seed {
					return nil
				}

				created, err := db.EnsureAdminUser(ctx, pool, security.NewHasher(cfg.BcryptCost), cfg)
				if err != nil {
					return fmt.Errorf("seed admin: %w", err)
				}
				log.Info("admin seed", "email", cfg.AdminEmail, "created", created)
				return nil
			})
			if err != nil {
				return err
			}

			log.Info("migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "also ensure the default admin account exists")

	return cmd
}
