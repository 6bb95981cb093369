package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"icecream-storefront/internal/domain"
	authsvc "icecream-storefront/internal/service/auth"
	ordersvc "icecream-storefront/internal/service/order"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubAuth resolves identities from a fixed user table and records calls.
type stubAuth struct {
	users map[int64]*domain.User

	loginUser *domain.User
	loginErr  error

	registered *authsvc.RegisterInput
	updated    *authsvc.ProfileUpdate
}

func (s *stubAuth) Register(_ context.Context, in authsvc.RegisterInput) (*domain.User, error) {
	s.registered = &in
	return &domain.User{ID: 1, Username: in.Username, Role: domain.RoleCustomer}, nil
}

func (s *stubAuth) Login(_ context.Context, username, password string) (*domain.User, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginUser, nil
}

func (s *stubAuth) Identify(_ context.Context, userID int64) (*domain.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubAuth) UpdateProfile(_ context.Context, user *domain.User, in authsvc.ProfileUpdate) (*domain.User, error) {
	s.updated = &in
	return user, nil
}

type stubOrders struct {
	placed  *ordersvc.PlaceInput
	actor   *domain.User
	orders  []domain.Order
	listErr error
}

func (s *stubOrders) Place(_ context.Context, actor *domain.User, in ordersvc.PlaceInput) (*domain.Order, error) {
	s.actor = actor
	s.placed = &in
	return &domain.Order{ID: 42, BusinessID: in.Business, Status: domain.StatusPending, TotalAmount: decimal.NewFromInt(670)}, nil
}

func (s *stubOrders) List(_ context.Context, actor *domain.User, _ ordersvc.ListInput) ([]domain.Order, error) {
	s.actor = actor
	return s.orders, s.listErr
}

func (s *stubOrders) MyOrders(_ context.Context, actor *domain.User) ([]domain.Order, error) {
	s.actor = actor
	return s.orders, s.listErr
}

func (s *stubOrders) UpdateStatus(_ context.Context, actor *domain.User, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	s.actor = actor
	return &domain.Order{ID: orderID, Status: status}, nil
}

func testUsers() map[int64]*domain.User {
	bizID := int64(7)
	return map[int64]*domain.User{
		1:  {ID: 1, Username: "admin", Role: domain.RoleAdmin},
		12: {ID: 12, Username: "himalaya", Role: domain.RoleCustomer, BusinessID: &bizID},
	}
}

func newTestRouter(t *testing.T, auth *stubAuth, orders *stubOrders) *gin.Engine {
	t.Helper()
	router, err := buildRouter(logDiscard(), nil, Deps{
		AuthSvc:  auth,
		OrderSvc: orders,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func doRequest(router *gin.Engine, method, target, userID, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBuildRouterRequiresServices(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatal("expected error without services")
	}
}

func TestCatalogEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubAuth{}, &stubOrders{})
	w := doRequest(router, http.MethodGet, "/api/catalog", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "Vanilla") || !strings.Contains(body, "Kulfi") {
		t.Fatalf("catalog body misses flavours: %s", body)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &stubAuth{}, &stubOrders{})
	if w := doRequest(router, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	router := newTestRouter(t, &stubAuth{}, &stubOrders{})
	if w := doRequest(router, http.MethodGet, "/readyz", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, &stubAuth{}, &stubOrders{})
	w := doRequest(router, http.MethodGet, "/healthz", "", "")
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing X-Request-Id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("X-Request-Id = %q, want passthrough", got)
	}
}

func TestRegisterEndpoint(t *testing.T) {
	auth := &stubAuth{}
	router := newTestRouter(t, auth, &stubOrders{})
	w := doRequest(router, http.MethodPost, "/api/auth/register", "",
		`{"username": "himalaya", "password": "sweets12345", "business_name": "Himalaya Sweets"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if auth.registered == nil || auth.registered.BusinessName != "Himalaya Sweets" {
		t.Fatalf("unexpected register input: %+v", auth.registered)
	}
}

func TestLoginEndpoint(t *testing.T) {
	auth := &stubAuth{loginUser: &domain.User{ID: 12, Username: "himalaya", Role: domain.RoleCustomer}}
	router := newTestRouter(t, auth, &stubOrders{})

	w := doRequest(router, http.MethodPost, "/api/auth/login", "",
		`{"username": "himalaya", "password": "sweets12345"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var user domain.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if user.Username != "himalaya" {
		t.Errorf("username = %q", user.Username)
	}
	if strings.Contains(w.Body.String(), "password_hash") {
		t.Error("password hash leaked in response")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	auth := &stubAuth{loginErr: authsvc.ErrInvalidCredentials}
	router := newTestRouter(t, auth, &stubOrders{})
	w := doRequest(router, http.MethodPost, "/api/auth/login", "",
		`{"username": "himalaya", "password": "wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	router := newTestRouter(t, &stubAuth{}, &stubOrders{})
	w := doRequest(router, http.MethodPost, "/api/auth/login", "", `{"username": "himalaya"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	auth := &stubAuth{users: testUsers()}
	router := newTestRouter(t, auth, &stubOrders{})

	if w := doRequest(router, http.MethodGet, "/api/auth/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}
	// An unknown or malformed identity header falls back to anonymous.
	if w := doRequest(router, http.MethodGet, "/api/auth/me", "999", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/auth/me", "not-a-number", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad header status = %d, want 401", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/auth/me", "12", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"himalaya"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPlaceOrderEndpoint(t *testing.T) {
	orders := &stubOrders{}
	router := newTestRouter(t, &stubAuth{users: testUsers()}, orders)

	w := doRequest(router, http.MethodPost, "/api/orders/place", "12",
		`{"business": 7, "items": [{"item_name": "Vanilla", "quantity": 3, "price": "150"}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if orders.actor == nil || orders.actor.ID != 12 {
		t.Fatalf("actor not resolved: %+v", orders.actor)
	}
	if len(orders.placed.Items) != 1 || orders.placed.Items[0].ItemName != "Vanilla" {
		t.Fatalf("unexpected place input: %+v", orders.placed)
	}
}

func TestPlaceOrderRejectsBadBody(t *testing.T) {
	router := newTestRouter(t, &stubAuth{}, &stubOrders{})
	w := doRequest(router, http.MethodPost, "/api/orders/place", "", `{"items": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestMyOrdersEndpoint(t *testing.T) {
	orders := &stubOrders{orders: []domain.Order{{ID: 2, Status: domain.StatusConfirmed}}}
	router := newTestRouter(t, &stubAuth{users: testUsers()}, orders)

	if w := doRequest(router, http.MethodGet, "/api/orders/my-orders", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/orders/my-orders", "12", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list []domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("unexpected orders: %+v", list)
	}
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	router := newTestRouter(t, &stubAuth{users: testUsers()}, &stubOrders{})

	body := `{"status": "Confirmed"}`
	if w := doRequest(router, http.MethodPatch, "/api/orders/5/status", "12", body); w.Code != http.StatusForbidden {
		t.Fatalf("customer status = %d, want 403", w.Code)
	}
	if w := doRequest(router, http.MethodPatch, "/api/orders/5/status", "", body); w.Code != http.StatusForbidden {
		t.Fatalf("anonymous status = %d, want 403", w.Code)
	}

	w := doRequest(router, http.MethodPatch, "/api/orders/5/status", "1", body)
	if w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"Confirmed"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestUpdateStatusBadOrderID(t *testing.T) {
	router := newTestRouter(t, &stubAuth{users: testUsers()}, &stubOrders{})
	w := doRequest(router, http.MethodPatch, "/api/orders/abc/status", "1", `{"status": "Confirmed"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAdminEndpointsWithoutReposAre503(t *testing.T) {
	router := newTestRouter(t, &stubAuth{users: testUsers()}, &stubOrders{})
	if w := doRequest(router, http.MethodGet, "/api/businesses", "1", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("businesses status = %d, want 503", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/admin/logs", "1", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("logs status = %d, want 503", w.Code)
	}
	// Non-admins never get that far.
	if w := doRequest(router, http.MethodGet, "/api/businesses", "12", ""); w.Code != http.StatusForbidden {
		t.Fatalf("customer status = %d, want 403", w.Code)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	orders := &stubOrders{listErr: domain.ErrNotFound}
	router := newTestRouter(t, &stubAuth{users: testUsers()}, orders)
	if w := doRequest(router, http.MethodGet, "/api/orders", "12", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	orders.listErr = ordersvc.ErrAdminOnly
	if w := doRequest(router, http.MethodGet, "/api/orders", "12", ""); w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	orders.listErr = errors.New("pg down")
	w := doRequest(router, http.MethodGet, "/api/orders", "12", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal error") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}
