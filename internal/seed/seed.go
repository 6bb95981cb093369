package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"icecream-storefront/internal/catalog"
)

type userSeed struct {
	Username string
	Password string
	Role     string
}

// Apply inserts demo data for manual testing. It is idempotent: existing
// rows are updated, not duplicated.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	bizID, err := ensureBusiness(ctx, pool, "Himalaya Sweets", "Lakeside, Pokhara", "9841550000", "orders@himalayasweets.example")
	if err != nil {
		return fmt.Errorf("ensure business: %w", err)
	}

	users := []userSeed{
		{Username: "admin", Password: "admin12345", Role: "ADMIN"},
		{Username: "himalaya", Password: "sweets12345", Role: "CUSTOMER"},
	}
	for _, u := range users {
		var businessID *int64
		if u.Role == "CUSTOMER" {
			businessID = &bizID
		}
		if err := ensureUser(ctx, pool, u, businessID); err != nil {
			return fmt.Errorf("ensure user %s: %w", u.Username, err)
		}
	}

	if err := ensureSampleOrder(ctx, pool, bizID); err != nil {
		return fmt.Errorf("ensure sample order: %w", err)
	}
	return nil
}

func ensureBusiness(ctx context.Context, pool *pgxpool.Pool, name, address, phone, email string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `SELECT id FROM businesses WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, `
INSERT INTO businesses (name, address, phone, email)
VALUES ($1, $2, $3, $4)
RETURNING id
`, name, address, phone, email).Scan(&id)
	return id, err
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, u userSeed, businessID *int64) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
INSERT INTO users (username, password_hash, role, business_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (username) DO UPDATE
SET role = EXCLUDED.role,
    business_id = EXCLUDED.business_id
`, u.Username, string(hash), u.Role, businessID)
	return err
}

// ensureSampleOrder writes one Pending order with two catalog flavours so a
// fresh install has something to show on the dashboard.
func ensureSampleOrder(ctx context.Context, pool *pgxpool.Pool, businessID int64) error {
	var existing int64
	err := pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE business_id = $1`, businessID).Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	var orderID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO orders (business_id, status)
VALUES ($1, 'Pending')
RETURNING id
`, businessID).Scan(&orderID); err != nil {
		return err
	}

	lines := []struct {
		Name string
		Qty  int
	}{
		{Name: "Vanilla", Qty: 3},
		{Name: "Pista Kulfi", Qty: 1},
	}
	for _, l := range lines {
		price := catalog.PriceOf(l.Name)
		if _, err := pool.Exec(ctx, `
INSERT INTO order_items (order_id, item_name, quantity, price)
VALUES ($1, $2, $3, $4)
`, orderID, l.Name, l.Qty, price.String()); err != nil {
			return err
		}
	}

	_, err = pool.Exec(ctx, `
UPDATE orders
SET total_amount = (
    SELECT COALESCE(SUM(price * quantity), 0)
    FROM order_items
    WHERE order_id = $1
)
WHERE id = $1
`, orderID)
	return err
}
