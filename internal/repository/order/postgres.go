package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"icecream-storefront/internal/domain"
)

// DB is the subset of pgxpool.Pool this repository uses. pgxmock satisfies
// it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
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

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var orderID int64
	err = tx.QueryRow(ctx, `
INSERT INTO orders (business_id, status)
VALUES ($1, $2)
RETURNING id
`, in.BusinessID, domain.StatusPending).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for _, it := range in.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, item_name, quantity, price)
VALUES ($1, $2, $3, $4)
`, orderID, it.ItemName, it.Quantity, it.Price.String()); err != nil {
			return nil, err
		}
	}

	// The stored total is always derived from the items, in the same
	// transaction that wrote them.
	if _, err := tx.Exec(ctx, `
UPDATE orders
SET total_amount = (
    SELECT COALESCE(SUM(price * quantity), 0)
    FROM order_items
    WHERE order_id = $1
)
WHERE id = $1
`, orderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

const orderColumns = `id, business_id, order_date, status, total_amount::text, email_sent`

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	o, err := scanOrder(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := r.fetchItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
`
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.BusinessID != 0 {
		args = append(args, f.BusinessID)
		conds = append(conds, fmt.Sprintf("business_id = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += "WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += `
ORDER BY order_date DESC, id DESC
`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var o domain.Order
		var total string
		if err := rows.Scan(&o.ID, &o.BusinessID, &o.OrderDate, &o.Status, &total, &o.EmailSent); err != nil {
			return nil, err
		}
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if its, ok := items[orders[i].ID]; ok {
			orders[i].Items = its
		}
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, emailSent bool) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $2,
    email_sent = email_sent OR $3
WHERE id = $1
RETURNING id
`
	var updated int64
	if err := r.db.QueryRow(ctx, q, id, status, emailSent).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, updated)
}

// fetchItems loads items for the given order IDs in one query, avoiding a
// per-order round trip when listing.
func (r *postgresRepo) fetchItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, item_name, quantity, price::text
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id ASC
`
	rows, err := r.db.Query(ctx, q, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var it domain.OrderItem
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemName, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var total string
	err := row.Scan(&o.ID, &o.BusinessID, &o.OrderDate, &o.Status, &total, &o.EmailSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	return &o, nil
}
