package order

import (
	"context"

	"github.com/shopspring/decimal"

	"icecream-storefront/internal/domain"
)

type ItemInput struct {
	ItemName string
	Quantity int
	Price    decimal.Decimal
}

type CreateOrderInput struct {
	BusinessID int64
	Items      []ItemInput
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Status     domain.OrderStatus
	BusinessID int64
}

type Repository interface {
	// Create writes the order and its items atomically. The total is
	// computed from the items inside the same transaction.
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// List returns orders newest first, items included.
	List(ctx context.Context, f ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, emailSent bool) (*domain.Order, error)
}
