package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Constraint names as declared in internal/db/migrations.
const (
	constraintUsersEmail   = "users_email_uniq"
	constraintUsersEmpID   = "users_emp_id_uniq"
	constraintAssetsSerial = "it_assets_serial_number_uniq"
	constraintAssetsOwner  = "it_assets_user_id_fkey"

	constraintAnnouncementsAuthor = "announcements_created_by_fkey"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == constraint
}
