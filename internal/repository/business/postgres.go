package business

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"icecream-storefront/internal/domain"
)

// DB is the subset of pgxpool.Pool this repository uses. pgxmock satisfies
// it in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	db DB
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(db DB) Repository {
	return &postgresRepo{db: db}
}

const businessColumns = `id, name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(email, ''), created_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateBusinessInput) (*domain.Business, error) {
	const q = `
INSERT INTO businesses (name, address, phone, email)
VALUES ($1, $2, $3, $4)
RETURNING ` + businessColumns
	return scanBusiness(r.db.QueryRow(ctx, q, in.Name, in.Address, in.Phone, in.Email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	const q = `
SELECT ` + businessColumns + `
FROM businesses
WHERE id = $1
`
	return scanBusiness(r.db.QueryRow(ctx, q, id))
}

func (r *postgresRepo) Update(ctx context.Context, id int64, in UpdateBusinessInput) (*domain.Business, error) {
	const q = `
UPDATE businesses
SET name    = COALESCE($2, name),
    address = COALESCE($3, address),
    phone   = COALESCE($4, phone),
    email   = COALESCE($5, email)
WHERE id = $1
RETURNING ` + businessColumns
	return scanBusiness(r.db.QueryRow(ctx, q, id, in.Name, in.Address, in.Phone, in.Email))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Business, error) {
	const q = `
SELECT ` + businessColumns + `
FROM businesses
ORDER BY name ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBusiness(row pgx.Row) (*domain.Business, error) {
	var b domain.Business
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
