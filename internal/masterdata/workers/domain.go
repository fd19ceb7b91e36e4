// Package workers manages the processing-floor workforce registry.
package workers

import (
	"errors"
	"time"
)

// Worker is one registered laborer.
type Worker struct {
	ID    int64
	Name  string
	Phone string
	// Role is the assigned station, e.g. sortir, giling, jemur, gudang.
	Role string
	// DailyWage is the agreed rupiah wage as a decimal string.
	DailyWage string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilters narrows worker listings.
type ListFilters struct {
	Search     string
	Role       string
	ActiveOnly bool
	Page       int
	PerPage    int
}

var (
	ErrNotFound   = errors.New("workers: not found")
	ErrValidation = errors.New("workers: invalid input")
)
