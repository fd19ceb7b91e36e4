package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// NormalizePurchase projects a purchase record into a ledger entry.
func NormalizePurchase(rec Record) Entry {
	return Entry{
		ID:           rec.ID,
		Type:         TypePurchase,
		Date:         rec.Date,
		Status:       rec.Status,
		Reference:    rec.Reference,
		Counterparty: rec.Counterparty,
		Notes:        rec.Notes,
		Total:        positiveOrNil(sumLines(rec.Items)),
		StockImpact:  ImpactIn,
		ItemCount:    len(rec.Items),
	}
}

// NormalizeSale projects a sale record into a ledger entry.
func NormalizeSale(rec Record) Entry {
	return Entry{
		ID:           rec.ID,
		Type:         TypeSale,
		Date:         rec.Date,
		Status:       rec.Status,
		Reference:    rec.Reference,
		Counterparty: rec.Counterparty,
		Notes:        rec.Notes,
		Total:        positiveOrNil(sumLines(rec.Items)),
		StockImpact:  ImpactOut,
		ItemCount:    len(rec.Items),
	}
}

// NormalizeProduction projects a production run into a ledger entry.
// Only inputs are valued; outputs describe yield, not money. The stock
// impact of production is deliberately not computed.
func NormalizeProduction(rec ProductionRecord) Entry {
	return Entry{
		ID:             rec.ID,
		Type:           TypeProduction,
		Date:           rec.Date,
		Status:         rec.Status,
		Reference:      rec.Reference,
		Counterparty:   rec.TypeName,
		Notes:          rec.Notes,
		StockImpact:    ImpactNeutral,
		ItemCount:      len(rec.Inputs) + len(rec.Outputs),
		ProductionCost: positiveOrNil(sumLines(rec.Inputs)),
	}
}

// Normalize converts a full snapshot into entry collections.
func Normalize(purchases, sales []Record, productions []ProductionRecord) Collections {
	var c Collections
	for _, rec := range purchases {
		c.Purchases = append(c.Purchases, NormalizePurchase(rec))
	}
	for _, rec := range sales {
		c.Sales = append(c.Sales, NormalizeSale(rec))
	}
	for _, rec := range productions {
		c.Productions = append(c.Productions, NormalizeProduction(rec))
	}
	return c
}

// sumLines aggregates qty × unit amount over line items, downgrading the
// persisted decimal strings to float64 for display summation. A line that
// fails to parse or produces a non-finite term contributes zero instead of
// failing the whole record.
func sumLines(items []LineItem) float64 {
	var sum float64
	for _, item := range items {
		qty, err := decimal.NewFromString(item.Qty)
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(item.UnitAmount)
		if err != nil {
			continue
		}
		term := qty.Mul(amount).InexactFloat64()
		if math.IsNaN(term) || math.IsInf(term, 0) {
			continue
		}
		sum += term
	}
	return sum
}

// positiveOrNil maps a non-positive or non-finite sum to nil. A nil total
// renders as "no value" rather than zero.
func positiveOrNil(sum float64) *float64 {
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil
	}
	return &sum
}
