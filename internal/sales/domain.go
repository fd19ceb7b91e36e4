// Package sales manages cinnamon goods sales to customers.
package sales

import (
	"errors"
	"time"
)

// Status is the sale lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// Sale is one selling transaction header.
type Sale struct {
	ID           int64
	Number       string
	CustomerID   int64
	CustomerName string
	Date         time.Time
	Status       Status
	Notes        string
	// Total is the decimal-string sum fixed at posting time. Empty for drafts.
	Total     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one sale line with decimal-string quantity and unit price.
type Item struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Qty       string
	UnitPrice string
}

var (
	// ErrNotFound indicates a missing sale.
	ErrNotFound = errors.New("sales: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("sales: invalid input")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("sales: invalid state transition")
)
