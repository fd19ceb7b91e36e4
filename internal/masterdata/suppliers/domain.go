// Package suppliers manages the bark supplier directory, mostly farmers
// and collectors around Kerinci.
package suppliers

import (
	"errors"
	"time"
)

// Supplier is one bark source.
type Supplier struct {
	ID        int64
	Name      string
	Phone     string
	Address   string
	Village   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilters narrows supplier listings.
type ListFilters struct {
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}

var (
	ErrNotFound   = errors.New("suppliers: not found")
	ErrValidation = errors.New("suppliers: invalid input")
)
