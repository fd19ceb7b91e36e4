package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// PurchaseSource lists purchase records for the ledger snapshot with the
// pushed-down query applied server-side.
type PurchaseSource interface {
	ListForLedger(ctx context.Context, q SourceQuery) ([]Record, error)
}

// SaleSource lists sale records for the ledger snapshot.
type SaleSource interface {
	ListForLedger(ctx context.Context, q SourceQuery) ([]Record, error)
}

// ProductionSource lists production runs, inputs and outputs included.
type ProductionSource interface {
	ListForLedger(ctx context.Context, q SourceQuery) ([]ProductionRecord, error)
}

// Service assembles the ledger view. It is stateless: each request fetches
// its own snapshot, derives entries and discards them after rendering.
type Service struct {
	purchases   PurchaseSource
	sales       SaleSource
	productions ProductionSource
	cache       *SummaryCache
}

// NewService constructs the ledger service. The cache may be nil.
func NewService(purchases PurchaseSource, sales SaleSource, productions ProductionSource, cache *SummaryCache) *Service {
	return &Service{purchases: purchases, sales: sales, productions: productions, cache: cache}
}

// View is the assembled result of one ledger request.
type View struct {
	Entries    []Entry
	Summary    Summary
	Pagination shared.Pagination
	Selected   *Entry
}

// ViewRequest bundles the filter and paging inputs of one request.
type ViewRequest struct {
	Filter     Filter
	Page       int
	PageSize   int
	SelectedID *int64
}

// BuildView fetches the snapshot, normalizes, filters, summarizes, sorts and
// paginates. The summary always covers the filtered pre-pagination entries.
func (s *Service) BuildView(ctx context.Context, req ViewRequest) (View, error) {
	collections, err := s.snapshot(ctx, req.Filter)
	if err != nil {
		return View{}, err
	}

	filtered := Apply(collections, req.Filter)
	summary := Summarize(filtered)
	sorted := SortEntries(filtered.All())

	size := ClampPageSize(req.PageSize)
	page := req.Page
	if page < 1 {
		page = 1
	}

	view := View{
		Entries:    Paginate(sorted, page, size),
		Summary:    summary,
		Pagination: shared.NewPagination(page, size, len(sorted)),
	}
	if req.SelectedID != nil {
		view.Selected = findSelected(sorted, req.Filter.Type, *req.SelectedID)
	}
	return view, nil
}

// UnfilteredSummary returns the summary over all records, served from the
// Redis cache when warm. The cache is a performance layer only; on any miss
// or cache error the summary is recomputed from the sources.
func (s *Service) UnfilteredSummary(ctx context.Context) (Summary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx); ok {
			return summary, nil
		}
	}
	collections, err := s.snapshot(ctx, Filter{})
	if err != nil {
		return Summary{}, err
	}
	summary := Summarize(collections)
	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	return summary, nil
}

// snapshot fetches the three collections concurrently. Collections ruled out
// by the type filter are not fetched at all.
func (s *Service) snapshot(ctx context.Context, f Filter) (Collections, error) {
	q := f.SourceQuery()

	var purchases, sales []Record
	var productions []ProductionRecord

	g, gctx := errgroup.WithContext(ctx)
	if f.Type == nil || *f.Type == TypePurchase {
		g.Go(func() error {
			var err error
			purchases, err = s.purchases.ListForLedger(gctx, q)
			if err != nil {
				return fmt.Errorf("%w: purchases: %v", ErrSourceUnavailable, err)
			}
			return nil
		})
	}
	if f.Type == nil || *f.Type == TypeSale {
		g.Go(func() error {
			var err error
			sales, err = s.sales.ListForLedger(gctx, q)
			if err != nil {
				return fmt.Errorf("%w: sales: %v", ErrSourceUnavailable, err)
			}
			return nil
		})
	}
	if f.Type == nil || *f.Type == TypeProduction {
		g.Go(func() error {
			var err error
			productions, err = s.productions.ListForLedger(gctx, q)
			if err != nil {
				return fmt.Errorf("%w: productions: %v", ErrSourceUnavailable, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Collections{}, err
	}
	return Normalize(purchases, sales, productions), nil
}

// findSelected resolves the detail-panel entry. Entry IDs may collide across
// types, so when the view is not restricted to one type the first match in
// sort order wins.
func findSelected(sorted []Entry, typ *EntryType, id int64) *Entry {
	for i := range sorted {
		if sorted[i].ID != id {
			continue
		}
		if typ != nil && sorted[i].Type != *typ {
			continue
		}
		e := sorted[i]
		return &e
	}
	return nil
}
