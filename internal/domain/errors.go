package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput marks errors caused by a bad request rather than a
	// fault in the system; handlers map it to a 400.
	ErrInvalidInput = errors.New("invalid input")
)
