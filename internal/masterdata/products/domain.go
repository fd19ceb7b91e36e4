// Package products manages the cinnamon product catalog: raw bark grades,
// processed goods and derivatives.
package products

import (
	"errors"
	"time"
)

// Product is one catalog entry.
type Product struct {
	ID   int64
	SKU  string
	Name string
	// Category groups products: bahan_baku, setengah_jadi, jadi.
	Category  string
	Unit      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilters narrows product listings.
type ListFilters struct {
	Search     string
	Category   string
	ActiveOnly bool
	Page       int
	PerPage    int
}

var (
	// ErrNotFound indicates a missing product.
	ErrNotFound = errors.New("products: not found")
	// ErrDuplicateSKU indicates a SKU collision.
	ErrDuplicateSKU = errors.New("products: duplicate sku")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("products: invalid input")
)
