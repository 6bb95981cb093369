package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"icecream-storefront/internal/domain"
	orderrepo "icecream-storefront/internal/repository/order"
)

var (
	// ErrAdminOnly is returned when a non-admin calls an admin operation.
	ErrAdminOnly = errors.New("admin access required")
	// ErrNoBusiness is returned when an order cannot be tied to a business.
	ErrNoBusiness = errors.New("business reference required")
)

// Service handles order placement, listing and status transitions.
type Service struct {
	orders orderRepo
	audit  auditLog
	logger *log.Logger
}

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, emailSent bool) (*domain.Order, error)
}

type auditLog interface {
	Record(ctx context.Context, adminUserID int64, action string) error
}

// New creates a Service. audit may be nil when no audit trail is wired.
func New(orders orderRepo, audit auditLog, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, audit: audit, logger: logger}
}

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PlaceInput is the place-order payload. Business may be zero for customer
// accounts, whose own business is used.
type PlaceInput struct {
	Business int64       `json:"business"`
	Items    []ItemInput `json:"items"`
}

// Place validates and records a new order. The stored total is computed
// from the items, never taken from the request. Admin placements are
// audit-logged.
func (s *Service) Place(ctx context.Context, actor *domain.User, in PlaceInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidInput)
	}
	items := make([]orderrepo.ItemInput, 0, len(in.Items))
	for i, it := range in.Items {
		name := strings.TrimSpace(it.ItemName)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d: name is required", domain.ErrInvalidInput, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d: quantity must be at least 1", domain.ErrInvalidInput, i)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d: price must not be negative", domain.ErrInvalidInput, i)
		}
		items = append(items, orderrepo.ItemInput{
			ItemName: name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	businessID := in.Business
	if actor != nil && !actor.IsAdmin() {
		// Customers always order for their own business.
		if actor.BusinessID == nil {
			return nil, ErrNoBusiness
		}
		businessID = *actor.BusinessID
	}
	if businessID == 0 {
		return nil, ErrNoBusiness
	}

	order, err := s.orders.Create(ctx, orderrepo.CreateOrderInput{
		BusinessID: businessID,
		Items:      items,
	})
	if err != nil {
		return nil, err
	}

	if actor != nil && actor.IsAdmin() && s.audit != nil {
		action := fmt.Sprintf("Placed order #%d for business #%d", order.ID, order.BusinessID)
		if err := s.audit.Record(ctx, actor.ID, action); err != nil {
			s.logger.Printf("order service: audit record failed: %v", err)
		}
	}
	return order, nil
}

// ListInput narrows List results; BusinessID is honoured for admins only.
type ListInput struct {
	Status     domain.OrderStatus
	BusinessID int64
}

// List returns orders visible to the actor, newest first. Admins see every
// business; customers only their own.
func (s *Service) List(ctx context.Context, actor *domain.User, in ListInput) ([]domain.Order, error) {
	if in.Status != "" && !domain.ValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
	}

	filter := orderrepo.ListFilter{Status: in.Status}
	if actor.IsAdmin() {
		filter.BusinessID = in.BusinessID
	} else {
		if actor.BusinessID == nil {
			return []domain.Order{}, nil
		}
		filter.BusinessID = *actor.BusinessID
	}
	return s.orders.List(ctx, filter)
}

// MyOrders returns the actor's own business history, newest first.
func (s *Service) MyOrders(ctx context.Context, actor *domain.User) ([]domain.Order, error) {
	if actor.BusinessID == nil {
		return []domain.Order{}, nil
	}
	return s.orders.List(ctx, orderrepo.ListFilter{BusinessID: *actor.BusinessID})
}

// UpdateStatus moves an order to a new status. Admin only. Confirming an
// order also flags that the confirmation email is to be sent. The change is
// audit-logged.
func (s *Service) UpdateStatus(ctx context.Context, actor *domain.User, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	before, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	emailSent := status == domain.StatusConfirmed
	order, err := s.orders.UpdateStatus(ctx, orderID, status, emailSent)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		action := fmt.Sprintf("Changed order #%d status: %s -> %s", order.ID, before.Status, order.Status)
		if err := s.audit.Record(ctx, actor.ID, action); err != nil {
			s.logger.Printf("order service: audit record failed: %v", err)
		}
	}
	return order, nil
}
