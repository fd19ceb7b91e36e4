package ledger

import (
	"strings"
	"time"
)

// Filter is the set of optional predicates applied to the ledger view.
// All supplied predicates must match (logical AND). Date range, status,
// counterparty and product filters are also pushed down to the record
// sources; applying them here again is harmless and keeps composition
// associative.
type Filter struct {
	DateStart          *time.Time
	DateEnd            *time.Time
	Type               *EntryType
	Status             *Status
	AffectStockOnly    bool
	ProductID          *int64
	CounterpartySubstr string
	FreeText           string
	MinAmount          *float64
	MaxAmount          *float64
}

// SourceQuery carries the predicates pushed down to the record sources.
type SourceQuery struct {
	DateStart          *time.Time
	DateEnd            *time.Time
	Status             *Status
	CounterpartySubstr string
	ProductID          *int64
}

// SourceQuery extracts the pushed-down portion of the filter.
func (f Filter) SourceQuery() SourceQuery {
	return SourceQuery{
		DateStart:          f.DateStart,
		DateEnd:            f.DateEnd,
		Status:             f.Status,
		CounterpartySubstr: f.CounterpartySubstr,
		ProductID:          f.ProductID,
	}
}

// Apply returns the subset of entries matching every supplied predicate.
// The input collections are never mutated.
func Apply(c Collections, f Filter) Collections {
	var out Collections
	if f.Type == nil || *f.Type == TypePurchase {
		out.Purchases = filterEntries(c.Purchases, f, true)
	}
	if f.Type == nil || *f.Type == TypeSale {
		out.Sales = filterEntries(c.Sales, f, true)
	}
	if f.Type == nil || *f.Type == TypeProduction {
		// Affect-stock-only never applies to production runs.
		out.Productions = filterEntries(c.Productions, f, false)
	}
	return out
}

func filterEntries(entries []Entry, f Filter, stockFilterable bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !matches(e, f, stockFilterable) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matches(e Entry, f Filter, stockFilterable bool) bool {
	if f.DateStart != nil && e.Date.Before(*f.DateStart) {
		return false
	}
	if f.DateEnd != nil && e.Date.After(*f.DateEnd) {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.AffectStockOnly && stockFilterable && e.ItemCount == 0 {
		return false
	}
	if f.CounterpartySubstr != "" && !containsFold(e.Counterparty, f.CounterpartySubstr) {
		return false
	}
	if f.FreeText != "" && !containsFold(e.Notes, f.FreeText) {
		return false
	}
	if f.MinAmount != nil || f.MaxAmount != nil {
		amount := e.Amount()
		// Entries without a meaningful amount are excluded whenever any
		// bound is set, even a bound of zero.
		if amount == nil {
			return false
		}
		if f.MinAmount != nil && *amount < *f.MinAmount {
			return false
		}
		if f.MaxAmount != nil && *amount > *f.MaxAmount {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
