// Package production manages cinnamon processing runs: raw bark in,
// graded and processed goods out.
package production

import (
	"errors"
	"time"
)

// Status is the production run lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// LineKind separates consumed inputs from produced outputs.
type LineKind string

const (
	KindInput  LineKind = "input"
	KindOutput LineKind = "output"
)

// Run is one production run header.
type Run struct {
	ID     int64
	Number string
	// TypeName labels the process, e.g. "Penggilingan" or "Sortasi".
	TypeName  string
	Date      time.Time
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line is one material movement of a run. Qty and UnitCost are decimal strings.
type Line struct {
	ID        int64
	RunID     int64
	Kind      LineKind
	ProductID int64
	Qty       string
	UnitCost  string
}

var (
	// ErrNotFound indicates a missing run.
	ErrNotFound = errors.New("production: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("production: invalid input")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("production: invalid state transition")
)
