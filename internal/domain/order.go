package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus flow: Pending → Confirmed → Completed, or → Cancelled.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed order with its line items. TotalAmount is always the
// sum of item subtotals, computed server-side.
type Order struct {
	ID          int64           `json:"id"`
	BusinessID  int64           `json:"business"`
	OrderDate   time.Time       `json:"order_date"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	EmailSent   bool            `json:"email_sent"`
	Items       []OrderItem     `json:"items"`
}

// OrderItem is a single line within an order, priced at the unit price the
// customer saw when the line was added.
type OrderItem struct {
	ID       int64           `json:"id"`
	OrderID  int64           `json:"-"`
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal is price × quantity for one line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AdminLog is one entry in the audit trail of admin actions.
type AdminLog struct {
	ID          int64     `json:"id"`
	AdminUserID int64     `json:"admin_user_id"`
	Action      string    `json:"action"`
	ActionTime  time.Time `json:"action_time"`
}
