package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurchaseSource struct {
	records []Record
	err     error
	calls   int
	lastQ   SourceQuery
}

func (s *stubPurchaseSource) ListForLedger(ctx context.Context, q SourceQuery) ([]Record, error) {
	s.calls++
	s.lastQ = q
	return s.records, s.err
}

type stubSaleSource struct {
	records []Record
	err     error
	calls   int
}

func (s *stubSaleSource) ListForLedger(ctx context.Context, q SourceQuery) ([]Record, error) {
	s.calls++
	return s.records, s.err
}

type stubProductionSource struct {
	records []ProductionRecord
	err     error
	calls   int
}

func (s *stubProductionSource) ListForLedger(ctx context.Context, q SourceQuery) ([]ProductionRecord, error) {
	s.calls++
	return s.records, s.err
}

func newTestService(p *stubPurchaseSource, s *stubSaleSource, pr *stubProductionSource) *Service {
	return NewService(p, s, pr, nil)
}

func TestBuildViewAssemblesSortedFilteredPage(t *testing.T) {
	purchases := &stubPurchaseSource{records: []Record{
		{ID: 1, Date: date("2024-01-05"), Status: StatusPosted, Counterparty: "Pak Rahmat",
			Items: []LineItem{{ProductID: 1, Qty: "10", UnitAmount: "1000"}}},
	}}
	sales := &stubSaleSource{records: []Record{
		{ID: 1, Date: date("2024-01-08"), Status: StatusPosted, Counterparty: "Toko Sinar",
			Items: []LineItem{{ProductID: 1, Qty: "2", UnitAmount: "500"}}},
	}}
	productions := &stubProductionSource{records: []ProductionRecord{
		{ID: 1, Date: date("2024-01-09"), Status: StatusPosted, TypeName: "Penggilingan",
			Inputs: []LineItem{{ProductID: 1, Qty: "5", UnitAmount: "200"}}},
	}}

	svc := newTestService(purchases, sales, productions)
	view, err := svc.BuildView(context.Background(), ViewRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)

	require.Len(t, view.Entries, 3)
	assert.Equal(t, TypeProduction, view.Entries[0].Type) // newest first
	assert.Equal(t, TypeSale, view.Entries[1].Type)
	assert.Equal(t, TypePurchase, view.Entries[2].Type)

	assert.Equal(t, 10000.0, view.Summary.Purchase.Nominal)
	assert.Equal(t, 1000.0, view.Summary.Sale.Nominal)
	assert.Equal(t, 1000.0, view.Summary.Production.Nominal)
	assert.Equal(t, 11000.0, view.Summary.GrandTotal)
	assert.Equal(t, 1, view.Pagination.TotalPages)
}

func TestBuildViewTypeFilterSkipsOtherSources(t *testing.T) {
	purchases := &stubPurchaseSource{}
	sales := &stubSaleSource{}
	productions := &stubProductionSource{}
	svc := newTestService(purchases, sales, productions)

	typ := TypeSale
	_, err := svc.BuildView(context.Background(), ViewRequest{Filter: Filter{Type: &typ}, Page: 1})
	require.NoError(t, err)

	assert.Zero(t, purchases.calls)
	assert.Equal(t, 1, sales.calls)
	assert.Zero(t, productions.calls)
}

func TestBuildViewPropagatesSourceFailure(t *testing.T) {
	purchases := &stubPurchaseSource{err: errors.New("connection refused")}
	svc := newTestService(purchases, &stubSaleSource{}, &stubProductionSource{})

	_, err := svc.BuildView(context.Background(), ViewRequest{Page: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestBuildViewPushesFilterDownToSources(t *testing.T) {
	purchases := &stubPurchaseSource{}
	svc := newTestService(purchases, &stubSaleSource{}, &stubProductionSource{})

	start := date("2024-01-01")
	status := StatusPosted
	productID := int64(42)
	_, err := svc.BuildView(context.Background(), ViewRequest{
		Filter: Filter{DateStart: &start, Status: &status, CounterpartySubstr: "rahmat", ProductID: &productID},
		Page:   1,
	})
	require.NoError(t, err)

	require.NotNil(t, purchases.lastQ.DateStart)
	assert.Equal(t, start, *purchases.lastQ.DateStart)
	require.NotNil(t, purchases.lastQ.Status)
	assert.Equal(t, StatusPosted, *purchases.lastQ.Status)
	assert.Equal(t, "rahmat", purchases.lastQ.CounterpartySubstr)
	require.NotNil(t, purchases.lastQ.ProductID)
	assert.Equal(t, int64(42), *purchases.lastQ.ProductID)
}

func TestBuildViewSelectedEntryResolvedFromFilteredSet(t *testing.T) {
	sales := &stubSaleSource{records: []Record{
		{ID: 21, Date: date("2024-01-08"), Status: StatusPosted,
			Items: []LineItem{{ProductID: 1, Qty: "1", UnitAmount: "100"}}},
	}}
	svc := newTestService(&stubPurchaseSource{}, sales, &stubProductionSource{})

	selected := int64(21)
	view, err := svc.BuildView(context.Background(), ViewRequest{Page: 1, SelectedID: &selected})
	require.NoError(t, err)

	require.NotNil(t, view.Selected)
	assert.Equal(t, int64(21), view.Selected.ID)
	assert.Equal(t, TypeSale, view.Selected.Type)
}

func TestBuildViewSelectedMissingYieldsNil(t *testing.T) {
	svc := newTestService(&stubPurchaseSource{}, &stubSaleSource{}, &stubProductionSource{})

	selected := int64(404)
	view, err := svc.BuildView(context.Background(), ViewRequest{Page: 1, SelectedID: &selected})
	require.NoError(t, err)

	assert.Nil(t, view.Selected)
}

func TestUnfilteredSummaryUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	purchases := &stubPurchaseSource{records: []Record{
		{ID: 1, Date: date("2024-01-05"), Status: StatusPosted,
			Items: []LineItem{{ProductID: 1, Qty: "1", UnitAmount: "5000"}}},
	}}
	svc := NewService(purchases, &stubSaleSource{}, &stubProductionSource{}, NewSummaryCache(client, 0))

	first, err := svc.UnfilteredSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000.0, first.Purchase.Nominal)
	assert.Equal(t, 1, purchases.calls)

	second, err := svc.UnfilteredSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, purchases.calls, "second read should be served from cache")
}
