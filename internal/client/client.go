// Package client talks to the order service over HTTP. It is the only
// network surface of the storefront: place order, auth, profile and order
// history. Transport failures and server rejections are kept distinct so
// callers can phrase them differently, but both leave the caller's draft
// untouched.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"icecream-storefront/internal/domain"
)

// TransportError means the server could not be reached at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "cannot reach server: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerRejection is any non-2xx response. Message carries the backend's
// own error text when it sent one.
type ServerRejection struct {
	StatusCode int
	Message    string
}

func (e *ServerRejection) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server rejected request (%d)", e.StatusCode)
}

// Client calls the order service. UserID, when set, is sent as the
// X-User-Id identity header on every request.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userID     int64
}

// New builds a Client for the given absolute base URL, e.g.
// "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("base url must be absolute")
	}
	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// SetUser attaches the signed-in user's identity to subsequent requests.
func (c *Client) SetUser(userID int64) {
	c.userID = userID
}

// ClearUser drops the identity, returning the client to guest mode.
func (c *Client) ClearUser() {
	c.userID = 0
}

// OrderItemInput is one line of a place-order request.
type OrderItemInput struct {
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	Business int64            `json:"business"`
	Items    []OrderItemInput `json:"items"`
}

// PlaceOrder submits an order. It is called at most once per user confirm;
// the caller enforces that by disabling re-entry while a call is in flight.
func (c *Client) PlaceOrder(ctx context.Context, businessID int64, items []OrderItemInput) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPost, "/api/orders/place", placeOrderRequest{
		Business: businessID,
		Items:    items,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates and returns the user. On success the client keeps the
// identity for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, &user)
	if err != nil {
		return nil, err
	}
	c.userID = user.ID
	return &user, nil
}

// RegisterInput creates a business and its first customer account together.
type RegisterInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Register creates a new business account and signs the client in as it.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &user); err != nil {
		return nil, err
	}
	c.userID = user.ID
	return &user, nil
}

// Me fetches the signed-in user's profile, business details included.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries the editable business fields of the profile.
type ProfileUpdate struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// UpdateProfile updates the caller's business details.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPatch, "/api/auth/me/update", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MyOrders returns the caller's business order history, newest first.
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/my-orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// do performs one round-trip. Request bodies are JSON; any non-2xx status
// becomes a *ServerRejection and any transport failure a *TransportError.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != 0 {
		req.Header.Set("X-User-Id", strconv.FormatInt(c.userID, 10))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerRejection{
			StatusCode: resp.StatusCode,
			Message:    rejectionMessage(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func rejectionMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return ""
}
