package order

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"icecream-storefront/internal/domain"
	orderrepo "icecream-storefront/internal/repository/order"
)

type stubOrderRepo struct {
	created    *orderrepo.CreateOrderInput
	listFilter *orderrepo.ListFilter
	orders     map[int64]*domain.Order

	statusID    int64
	statusValue domain.OrderStatus
	emailSent   bool
}

func (s *stubOrderRepo) Create(_ context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	s.created = &in
	return &domain.Order{ID: 42, BusinessID: in.BusinessID, Status: domain.StatusPending}, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) List(_ context.Context, f orderrepo.ListFilter) ([]domain.Order, error) {
	s.listFilter = &f
	return []domain.Order{}, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus, emailSent bool) (*domain.Order, error) {
	s.statusID = id
	s.statusValue = status
	s.emailSent = emailSent
	return &domain.Order{ID: id, Status: status, EmailSent: emailSent}, nil
}

type stubAudit struct {
	actions []string
	userIDs []int64
}

func (s *stubAudit) Record(_ context.Context, adminUserID int64, action string) error {
	s.userIDs = append(s.userIDs, adminUserID)
	s.actions = append(s.actions, action)
	return nil
}

func admin() *domain.User {
	return &domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin}
}

func customer(businessID int64) *domain.User {
	return &domain.User{ID: 12, Username: "himalaya", Role: domain.RoleCustomer, BusinessID: &businessID}
}

func oneItem() []ItemInput {
	return []ItemInput{{ItemName: "Vanilla", Quantity: 3, Price: decimal.NewFromInt(150)}}
}

func TestPlaceValidatesItems(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	cases := []struct {
		name  string
		items []ItemInput
	}{
		{"no items", nil},
		{"blank name", []ItemInput{{ItemName: "  ", Quantity: 1}}},
		{"zero quantity", []ItemInput{{ItemName: "Vanilla", Quantity: 0}}},
		{"negative price", []ItemInput{{ItemName: "Vanilla", Quantity: 1, Price: decimal.NewFromInt(-1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Place(context.Background(), customer(7), PlaceInput{Business: 7, Items: tc.items})
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestPlaceCustomerIsScopedToOwnBusiness(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := New(repo, nil, nil)

	// The request names another business; the actor's own wins.
	order, err := svc.Place(context.Background(), customer(7), PlaceInput{Business: 99, Items: oneItem()})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if repo.created.BusinessID != 7 {
		t.Errorf("created for business %d, want 7", repo.created.BusinessID)
	}
	if order.ID != 42 {
		t.Errorf("order id = %d", order.ID)
	}
}

func TestPlaceCustomerWithoutBusiness(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	actor := &domain.User{ID: 3, Role: domain.RoleCustomer}
	_, err := svc.Place(context.Background(), actor, PlaceInput{Business: 7, Items: oneItem()})
	if !errors.Is(err, ErrNoBusiness) {
		t.Fatalf("expected ErrNoBusiness, got %v", err)
	}
}

func TestPlaceRequiresBusinessReference(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	_, err := svc.Place(context.Background(), admin(), PlaceInput{Items: oneItem()})
	if !errors.Is(err, ErrNoBusiness) {
		t.Fatalf("expected ErrNoBusiness, got %v", err)
	}
}

func TestPlaceByAdminIsAudited(t *testing.T) {
	repo := &stubOrderRepo{}
	audit := &stubAudit{}
	svc := New(repo, audit, nil)

	_, err := svc.Place(context.Background(), admin(), PlaceInput{Business: 7, Items: oneItem()})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(audit.actions) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(audit.actions))
	}
	if audit.userIDs[0] != 1 {
		t.Errorf("audit user = %d, want 1", audit.userIDs[0])
	}
	if want := fmt.Sprintf("Placed order #%d for business #%d", 42, 7); audit.actions[0] != want {
		t.Errorf("audit action = %q, want %q", audit.actions[0], want)
	}
}

func TestPlaceByCustomerIsNotAudited(t *testing.T) {
	audit := &stubAudit{}
	svc := New(&stubOrderRepo{}, audit, nil)
	if _, err := svc.Place(context.Background(), customer(7), PlaceInput{Items: oneItem()}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(audit.actions) != 0 {
		t.Fatalf("unexpected audit entries: %v", audit.actions)
	}
}

func TestListScoping(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := New(repo, nil, nil)

	// Admins may filter by any business.
	if _, err := svc.List(context.Background(), admin(), ListInput{BusinessID: 99}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if repo.listFilter.BusinessID != 99 {
		t.Errorf("admin filter business = %d, want 99", repo.listFilter.BusinessID)
	}

	// Customers are pinned to their own business regardless of the filter.
	if _, err := svc.List(context.Background(), customer(7), ListInput{BusinessID: 99}); err != nil {
		t.Fatalf("customer list: %v", err)
	}
	if repo.listFilter.BusinessID != 7 {
		t.Errorf("customer filter business = %d, want 7", repo.listFilter.BusinessID)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	_, err := svc.List(context.Background(), admin(), ListInput{Status: "Shipped"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMyOrdersWithoutBusinessIsEmpty(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := New(repo, nil, nil)
	orders, err := svc.MyOrders(context.Background(), &domain.User{ID: 3, Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("my orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty history, got %d", len(orders))
	}
	if repo.listFilter != nil {
		t.Fatal("repository should not be queried")
	}
}

func TestUpdateStatusAdminOnly(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	if _, err := svc.UpdateStatus(context.Background(), customer(7), 5, domain.StatusConfirmed); !errors.Is(err, ErrAdminOnly) {
		t.Errorf("customer: got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), nil, 5, domain.StatusConfirmed); !errors.Is(err, ErrAdminOnly) {
		t.Errorf("anonymous: got %v", err)
	}
}

func TestUpdateStatusConfirmFlagsEmail(t *testing.T) {
	repo := &stubOrderRepo{orders: map[int64]*domain.Order{
		5: {ID: 5, Status: domain.StatusPending},
	}}
	audit := &stubAudit{}
	svc := New(repo, audit, nil)

	order, err := svc.UpdateStatus(context.Background(), admin(), 5, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if order.Status != domain.StatusConfirmed {
		t.Errorf("status = %q", order.Status)
	}
	if !repo.emailSent {
		t.Error("confirmation should flag the email")
	}
	if want := "Changed order #5 status: Pending -> Confirmed"; len(audit.actions) != 1 || audit.actions[0] != want {
		t.Errorf("audit = %v, want [%q]", audit.actions, want)
	}

	// Other transitions do not flag the email.
	if _, err := svc.UpdateStatus(context.Background(), admin(), 5, domain.StatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if repo.emailSent {
		t.Error("completion must not flag the email")
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	_, err := svc.UpdateStatus(context.Background(), admin(), 404, domain.StatusConfirmed)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, nil)
	_, err := svc.UpdateStatus(context.Background(), admin(), 5, "Teleported")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
