package postgres

import (
	"context"

	"github.com/geocoder89/portal/internal/domain/announcement"
	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnnouncementsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAnnouncementsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AnnouncementsRepo {
	return &AnnouncementsRepo{pool: pool, prom: prom}
}

func (r *AnnouncementsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *AnnouncementsRepo) Create(ctx context.Context, message string, createdBy int64) (announcement.Announcement, error) {
	var a announcement.Announcement

	err := r.observe("announcements.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO announcements (message, created_by) VALUES ($1, $2)
			RETURNING id, message, created_by, created_at`,
			message, createdBy,
		).Scan(&a.ID, &a.Message, &a.CreatedBy, &a.CreatedAt)
	})

	if err != nil {
		// the author was deleted after their token was issued
		if isForeignKeyViolation(err, constraintAnnouncementsAuthor) {
			return announcement.Announcement{}, user.ErrNotFound
		}
		return announcement.Announcement{}, err
	}

	return a, nil
}

// List returns the newest announcements first.
func (r *AnnouncementsRepo) List(ctx context.Context) ([]announcement.Announcement, error) {
	out := make([]announcement.Announcement, 0)

	err := r.observe("announcements.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, message, created_by, created_at FROM announcements ORDER BY created_at DESC, id DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a announcement.Announcement
			if err := rows.Scan(&a.ID, &a.Message, &a.CreatedBy, &a.CreatedAt); err != nil {
				return err
			}
			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
