package domain

import "time"

// Role distinguishes admins (no business, full access) from business
// customers (scoped to their own business).
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// User is a system account. BusinessID is nil for admins.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	BusinessID   *int64    `json:"business"`
	Business     *Business `json:"business_details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
