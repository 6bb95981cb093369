package adminlog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"icecream-storefront/internal/domain"
)

// DB is the subset of pgxpool.Pool this repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresRepo struct {
	db DB
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(db DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Record(ctx context.Context, adminUserID int64, action string) error {
	const q = `
INSERT INTO admin_logs (admin_user_id, action)
VALUES ($1, $2)
`
	_, err := r.db.Exec(ctx, q, adminUserID, action)
	return err
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.AdminLog, error) {
	const q = `
SELECT id, admin_user_id, action, action_time
FROM admin_logs
ORDER BY action_time DESC, id DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AdminLog
	for rows.Next() {
		var l domain.AdminLog
		if err := rows.Scan(&l.ID, &l.AdminUserID, &l.Action, &l.ActionTime); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
