package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const assetColumns = `id, user_id, type, model, serial_number, monitor, keyboard, mouse, wifi_lan_ip, comments, created_at, updated_at`

type AssetsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAssetsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AssetsRepo {
	return &AssetsRepo{pool: pool, prom: prom}
}

func (r *AssetsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func assetDest(a *asset.Asset) []any {
	return []any{
		&a.ID,
		&a.UserID,
		&a.Type,
		&a.Model,
		&a.SerialNumber,
		&a.Monitor,
		&a.Keyboard,
		&a.Mouse,
		&a.WifiLanIP,
		&a.Comments,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}

func translateAssetErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return asset.ErrNotFound
	case isUniqueViolation(err, constraintAssetsSerial):
		return asset.ErrSerialTaken
	case isForeignKeyViolation(err, constraintAssetsOwner):
		return asset.ErrOwnerNotFound
	default:
		return err
	}
}

func (r *AssetsRepo) Create(ctx context.Context, req asset.CreateAssetRequest) (asset.Asset, error) {
	var a asset.Asset

	err := r.observe("assets.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO it_assets (user_id, type, model, serial_number, monitor, keyboard, mouse, wifi_lan_ip, comments)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING `+assetColumns,
			req.UserID, req.Type, req.Model, req.SerialNumber, req.Monitor, req.Keyboard, req.Mouse, req.WifiLanIP, req.Comments,
		).Scan(assetDest(&a)...)
	})

	if err != nil {
		return asset.Asset{}, translateAssetErr(err)
	}

	return a, nil
}

// List joins each asset with its holder's name and employee id.
func (r *AssetsRepo) List(ctx context.Context) ([]asset.WithOwner, error) {
	out := make([]asset.WithOwner, 0)

	err := r.observe("assets.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT a.id, a.user_id, a.type, a.model, a.serial_number, a.monitor, a.keyboard, a.mouse,
				a.wifi_lan_ip, a.comments, a.created_at, a.updated_at,
				u.first_name, u.last_name, u.emp_id
			FROM it_assets a
			LEFT JOIN users u ON u.id = a.user_id
			ORDER BY a.id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var row asset.WithOwner
			dest := append(assetDest(&row.Asset), &row.FirstName, &row.LastName, &row.EmpID)

			if err := rows.Scan(dest...); err != nil {
				return err
			}
			out = append(out, row)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AssetsRepo) ListForUser(ctx context.Context, userID int64) ([]asset.Asset, error) {
	out := make([]asset.Asset, 0)

	err := r.observe("assets.list_for_user", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM it_assets WHERE user_id = $1 ORDER BY id ASC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a asset.Asset
			if err := rows.Scan(assetDest(&a)...); err != nil {
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

func (r *AssetsRepo) Update(ctx context.Context, id int64, req asset.UpdateAssetRequest) (asset.Asset, error) {
	var a asset.Asset

	err := r.observe("assets.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE it_assets
				SET user_id = CASE WHEN $2::BOOLEAN THEN $3::BIGINT ELSE user_id END,
						type = COALESCE($4, type),
						model = COALESCE($5, model),
						serial_number = COALESCE($6, serial_number),
						monitor = COALESCE($7, monitor),
						keyboard = COALESCE($8, keyboard),
						mouse = COALESCE($9, mouse),
						wifi_lan_ip = COALESCE($10, wifi_lan_ip),
						comments = COALESCE($11, comments),
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+assetColumns,
			id, req.UserID.Set, req.UserID.ID, req.Type, req.Model, req.SerialNumber,
			req.Monitor, req.Keyboard, req.Mouse, req.WifiLanIP, req.Comments,
		).Scan(assetDest(&a)...)
	})

	if err != nil {
		return asset.Asset{}, translateAssetErr(err)
	}

	return a, nil
}

func (r *AssetsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("assets.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM it_assets WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return asset.ErrNotFound
	}

	return nil
}
