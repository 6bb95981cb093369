package adminlog

import (
	"context"

	"icecream-storefront/internal/domain"
)

type Repository interface {
	// Record appends one audit entry for an admin action.
	Record(ctx context.Context, adminUserID int64, action string) error
	// List returns the audit trail, most recent first.
	List(ctx context.Context) ([]domain.AdminLog, error)
}
