// Package users provides administrator management of back-office accounts.
package users

import (
	"errors"
	"time"
)

// Account is one user row with its assigned role names.
type Account struct {
	ID          int64
	Username    string
	FullName    string
	Active      bool
	Roles       []string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrNotFound          = errors.New("users: not found")
	ErrDuplicateUsername = errors.New("users: duplicate username")
	ErrValidation        = errors.New("users: invalid input")
)
