package business

import (
	"context"

	"icecream-storefront/internal/domain"
)

type CreateBusinessInput struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// UpdateBusinessInput carries optional field updates; nil means unchanged.
type UpdateBusinessInput struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}

type Repository interface {
	Create(ctx context.Context, in CreateBusinessInput) (*domain.Business, error)
	GetByID(ctx context.Context, id int64) (*domain.Business, error)
	Update(ctx context.Context, id int64, in UpdateBusinessInput) (*domain.Business, error)
	List(ctx context.Context) ([]domain.Business, error)
}
