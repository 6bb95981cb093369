package user

import (
	"context"

	"icecream-storefront/internal/domain"
)

type CreateUserInput struct {
	Username     string
	PasswordHash string
	Role         domain.Role
	BusinessID   *int64
}

type Repository interface {
	// Create inserts a user; domain.ErrAlreadyExists when the username is taken.
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	// GetByID returns the user with business details joined in.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
