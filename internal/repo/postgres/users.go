package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, first_name, last_name, emp_id, designation, is_admin, is_locked, created_at, updated_at`

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type UsersRepo struct {
	pool   *pgxpool.Pool
	hasher PasswordHasher
	prom   *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, hasher PasswordHasher, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, hasher: hasher, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.EmpID,
		&u.Designation,
		&u.IsAdmin,
		&u.IsLocked,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func translateUserErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return user.ErrNotFound
	case isUniqueViolation(err, constraintUsersEmail):
		return user.ErrEmailTaken
	case isUniqueViolation(err, constraintUsersEmpID):
		return user.ErrEmpIDTaken
	default:
		return err
	}
}

// Create hashes the password before touching the pool so bcrypt never
// runs while a connection is checked out.
func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	hash, err := r.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	var u user.User

	err = r.observe("users.create", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, first_name, last_name, emp_id, designation, is_admin)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING `+userColumns,
			req.Email, hash, req.FirstName, req.LastName, req.EmpID, req.Designation, req.IsAdmin,
		))
		return e
	})

	if err != nil {
		return user.User{}, translateUserErr(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return e
	})

	if err != nil {
		return user.User{}, translateUserErr(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return e
	})

	if err != nil {
		return user.User{}, translateUserErr(err)
	}

	return u, nil
}

// List returns admins first, then everyone by first name.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY is_admin DESC, first_name ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update applies the non-nil fields of req. The stored hash is replaced
// only when a new password is supplied.
func (r *UsersRepo) Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	var newHash *string

	if req.Password != nil {
		hash, err := r.hasher.Hash(*req.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		newHash = &hash
	}

	var u user.User

	err := r.observe("users.update", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
				SET email = COALESCE($2, email),
						password_hash = COALESCE($3, password_hash),
						first_name = COALESCE($4, first_name),
						last_name = COALESCE($5, last_name),
						emp_id = COALESCE($6, emp_id),
						designation = COALESCE($7, designation),
						is_admin = COALESCE($8, is_admin),
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, req.Email, newHash, req.FirstName, req.LastName, req.EmpID, req.Designation, req.IsAdmin,
		))
		return e
	})

	if err != nil {
		return user.User{}, translateUserErr(err)
	}

	return u, nil
}

func (r *UsersRepo) ToggleLock(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.toggle_lock", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users SET is_locked = NOT is_locked, updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id,
		))
		return e
	})

	if err != nil {
		return user.User{}, translateUserErr(err)
	}

	return u, nil
}

// Delete removes the user; it_assets.user_id is cleared by the
// ON DELETE SET NULL foreign key in the same statement.
func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}
