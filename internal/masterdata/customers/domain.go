// Package customers manages the buyer directory.
package customers

import (
	"errors"
	"time"
)

// Customer is one buyer, from local shops to export partners.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	City      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilters narrows customer listings.
type ListFilters struct {
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}

var (
	ErrNotFound   = errors.New("customers: not found")
	ErrValidation = errors.New("customers: invalid input")
)
