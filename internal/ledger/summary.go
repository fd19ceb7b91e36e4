package ledger

// TypeSummary aggregates one entry collection.
type TypeSummary struct {
	Count   int
	Nominal float64
}

// Summary aggregates the filtered, pre-pagination entries. Nominal totals
// treat nil entry totals as zero; that differs from row display, where nil
// renders as a dash. Production cost is tracked separately and deliberately
// excluded from the grand total: a production run transforms stock, it is
// not a monetary inflow or outflow.
type Summary struct {
	Purchase   TypeSummary
	Sale       TypeSummary
	Production TypeSummary
	GrandTotal float64
}

// Summarize computes per-type counts, nominal totals and the grand total.
func Summarize(c Collections) Summary {
	var s Summary
	for _, e := range c.Purchases {
		s.Purchase.Count++
		if e.Total != nil {
			s.Purchase.Nominal += *e.Total
		}
	}
	for _, e := range c.Sales {
		s.Sale.Count++
		if e.Total != nil {
			s.Sale.Nominal += *e.Total
		}
	}
	for _, e := range c.Productions {
		s.Production.Count++
		if e.ProductionCost != nil {
			s.Production.Nominal += *e.ProductionCost
		}
	}
	s.GrandTotal = s.Purchase.Nominal + s.Sale.Nominal
	return s
}
