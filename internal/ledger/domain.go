// Package ledger builds the read-only transaction ledger view over
// purchasing, sales and production records. Entries are derived fresh on
// every request and never persisted.
package ledger

import (
	"errors"
	"time"
)

// EntryType tags the origin of a ledger entry.
type EntryType string

const (
	TypePurchase   EntryType = "purchase"
	TypeSale       EntryType = "sale"
	TypeProduction EntryType = "production"
)

// Status mirrors the lifecycle state of the underlying record.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// StockImpact describes how a record moves inventory.
type StockImpact string

const (
	ImpactIn      StockImpact = "IN"
	ImpactOut     StockImpact = "OUT"
	ImpactNeutral StockImpact = "NEUTRAL"
)

// Entry is the normalized, display-oriented projection of one source record.
// IDs are only unique per type; consumers must key on (Type, ID).
type Entry struct {
	ID           int64
	Type         EntryType
	Date         time.Time
	Status       Status
	Reference    string
	Counterparty string
	Notes        string
	// Total is nil when the record has no meaningful monetary total,
	// which is distinct from a total of zero.
	Total       *float64
	StockImpact StockImpact
	ItemCount   int
	// ProductionCost values production inputs only. Nil for other types.
	ProductionCost *float64
}

// Amount returns the monetary figure relevant for amount filtering:
// ProductionCost for production entries, Total otherwise.
func (e Entry) Amount() *float64 {
	if e.Type == TypeProduction {
		return e.ProductionCost
	}
	return e.Total
}

// LineItem is one line of a source record. Quantity and unit amount are
// carried as the decimal strings persisted by the transactional services.
type LineItem struct {
	ProductID  int64
	Qty        string
	UnitAmount string
}

// Record is the common shape of purchase and sale records as fetched for
// the ledger snapshot.
type Record struct {
	ID           int64
	Reference    string
	Date         time.Time
	Status       Status
	Counterparty string
	Notes        string
	Items        []LineItem
}

// ProductionRecord is a production run with separate input and output lines.
type ProductionRecord struct {
	ID        int64
	Reference string
	Date      time.Time
	Status    Status
	TypeName  string
	Notes     string
	Inputs    []LineItem
	Outputs   []LineItem
}

// Collections holds the normalized entries split by source type, mirroring
// the three record collections of the snapshot.
type Collections struct {
	Purchases   []Entry
	Sales       []Entry
	Productions []Entry
}

// All concatenates the three collections in purchase, sale, production order.
func (c Collections) All() []Entry {
	out := make([]Entry, 0, len(c.Purchases)+len(c.Sales)+len(c.Productions))
	out = append(out, c.Purchases...)
	out = append(out, c.Sales...)
	out = append(out, c.Productions...)
	return out
}

// ErrSourceUnavailable wraps snapshot fetch failures from the record sources.
var ErrSourceUnavailable = errors.New("ledger: source unavailable")
