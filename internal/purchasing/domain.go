// Package purchasing manages raw cassia bark purchases from suppliers.
package purchasing

import (
	"errors"
	"time"
)

// Status is the purchase lifecycle state. Cancelled purchases stay on
// record; they are logically void, never deleted.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// Purchase is one buying transaction header.
type Purchase struct {
	ID           int64
	Number       string
	SupplierID   int64
	SupplierName string
	Date         time.Time
	Status       Status
	Notes        string
	// Total is the decimal-string sum computed at posting time. Empty for drafts.
	Total     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one purchase line. Quantity and unit cost are stored as
// arbitrary-precision decimal strings to keep persisted amounts exact.
type Item struct {
	ID         int64
	PurchaseID int64
	ProductID  int64
	Qty        string
	UnitCost   string
}

var (
	// ErrNotFound indicates a missing purchase.
	ErrNotFound = errors.New("purchasing: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("purchasing: invalid input")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("purchasing: invalid state transition")
)
