// Package auth handles back-office sign in and session lifecycle.
package auth

import (
	"errors"
	"time"
)

// User is one back-office account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike, so responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUserInactive indicates a deactivated account.
	ErrUserInactive = errors.New("auth: user inactive")
)
