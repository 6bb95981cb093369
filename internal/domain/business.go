package domain

import "time"

// Business is a B2B client that places ice cream orders. Every order and
// every non-admin user belongs to one.
type Business struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
