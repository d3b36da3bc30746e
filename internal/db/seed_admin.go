package db

import (
	"context"
	"errors"

	"github.com/geocoder89/portal/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureAdminUser seeds the default admin once. It reports whether a row
// was inserted.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, hasher PasswordHasher, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	// ON CONFLICT covers a second replica seeding at the same moment
	tag, err := pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, emp_id, designation, is_admin)
		VALUES ($1,$2,$3,$4,$5,$6,TRUE)
		ON CONFLICT DO NOTHING
		`,
		cfg.AdminEmail, hash, cfg.AdminFirstName, cfg.AdminLastName, cfg.AdminEmpID, "Administrator",
	)

	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
