package user

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"icecream-storefront/internal/domain"
)

// DB is the subset of pgxpool.Pool this repository uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	db     DB
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(db DB, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{db: db, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	const q = `
INSERT INTO users (username, password_hash, role, business_id)
VALUES ($1, $2, $3, $4)
RETURNING id, username, password_hash, role, business_id, created_at
`
	var u domain.User
	err := r.db.QueryRow(ctx, q, in.Username, in.PasswordHash, in.Role, in.BusinessID).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.BusinessID,
		&u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: create username=%s err=%v", in.Username, err)
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = userSelect + `
WHERE u.id = $1
`
	return r.scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = userSelect + `
WHERE u.username = $1
`
	return r.scanUser(r.db.QueryRow(ctx, q, username))
}

const userSelect = `
SELECT u.id, u.username, u.password_hash, u.role, u.business_id, u.created_at,
       b.id, b.name, COALESCE(b.address, ''), COALESCE(b.phone, ''), COALESCE(b.email, ''), b.created_at
FROM users u
LEFT JOIN businesses b ON b.id = u.business_id
`

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var bizID *int64
	var bizName, bizAddress, bizPhone, bizEmail *string
	var bizCreated *time.Time
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.BusinessID,
		&u.CreatedAt,
		&bizID,
		&bizName,
		&bizAddress,
		&bizPhone,
		&bizEmail,
		&bizCreated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("user repo: scan err=%v", err)
		return nil, err
	}
	if bizID != nil {
		b := domain.Business{ID: *bizID}
		if bizName != nil {
			b.Name = *bizName
		}
		if bizAddress != nil {
			b.Address = *bizAddress
		}
		if bizPhone != nil {
			b.Phone = *bizPhone
		}
		if bizEmail != nil {
			b.Email = *bizEmail
		}
		if bizCreated != nil {
			b.CreatedAt = *bizCreated
		}
		u.Business = &b
	}
	return &u, nil
}
