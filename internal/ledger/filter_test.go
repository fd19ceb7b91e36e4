package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fl(v float64) *float64 { return &v }

func entry(id int64, typ EntryType, d time.Time, status Status, total *float64, items int) Entry {
	e := Entry{ID: id, Type: typ, Date: d, Status: status, ItemCount: items}
	if typ == TypeProduction {
		e.ProductionCost = total
		e.StockImpact = ImpactNeutral
	} else {
		e.Total = total
	}
	return e
}

func testCollections() Collections {
	return Collections{
		Purchases: []Entry{
			entry(1, TypePurchase, date("2024-01-05"), StatusPosted, fl(10000), 1),
			entry(2, TypePurchase, date("2024-01-10"), StatusDraft, fl(3000), 2),
			entry(3, TypePurchase, date("2024-01-12"), StatusCancelled, nil, 0),
		},
		Sales: []Entry{
			entry(1, TypeSale, date("2024-01-08"), StatusPosted, fl(7500), 3),
			entry(4, TypeSale, date("2024-01-15"), StatusPosted, nil, 0),
		},
		Productions: []Entry{
			entry(1, TypeProduction, date("2024-01-09"), StatusPosted, fl(1200), 0),
		},
	}
}

func TestApplyStatusExactMatch(t *testing.T) {
	status := StatusCancelled
	got := Apply(testCollections(), Filter{Status: &status})

	require.Len(t, got.Purchases, 1)
	assert.Equal(t, int64(3), got.Purchases[0].ID)
	assert.Empty(t, got.Sales)
	assert.Empty(t, got.Productions)
}

func TestApplyTypeZeroesOtherCollections(t *testing.T) {
	typ := TypeSale
	got := Apply(testCollections(), Filter{Type: &typ})

	assert.Empty(t, got.Purchases)
	assert.Len(t, got.Sales, 2)
	assert.Empty(t, got.Productions)
}

func TestApplyMinAmountExcludesNilTotals(t *testing.T) {
	got := Apply(testCollections(), Filter{MinAmount: fl(5000)})

	require.Len(t, got.Purchases, 1)
	assert.Equal(t, 10000.0, *got.Purchases[0].Total)
	require.Len(t, got.Sales, 1)
	assert.Equal(t, 7500.0, *got.Sales[0].Total)
	assert.Empty(t, got.Productions)
}

func TestApplyZeroMinAmountStillExcludesNilTotals(t *testing.T) {
	// A nil total means "no value", not zero, so even min=0 excludes it.
	got := Apply(testCollections(), Filter{MinAmount: fl(0)})

	for _, e := range got.All() {
		assert.NotNil(t, e.Amount())
	}
	assert.Len(t, got.Purchases, 2)
	assert.Len(t, got.Sales, 1)
	assert.Len(t, got.Productions, 1)
}

func TestApplyWithoutBoundsKeepsNilTotals(t *testing.T) {
	got := Apply(testCollections(), Filter{})
	assert.Len(t, got.All(), 6)
}

func TestApplyMaxAmountBoundIsInclusive(t *testing.T) {
	got := Apply(testCollections(), Filter{MaxAmount: fl(7500)})

	require.Len(t, got.Sales, 1)
	assert.Equal(t, 7500.0, *got.Sales[0].Total)
}

func TestApplyAmountBoundUsesProductionCostForProduction(t *testing.T) {
	got := Apply(testCollections(), Filter{MinAmount: fl(1000), MaxAmount: fl(2000)})

	assert.Empty(t, got.Purchases)
	assert.Empty(t, got.Sales)
	require.Len(t, got.Productions, 1)
	assert.Equal(t, 1200.0, *got.Productions[0].ProductionCost)
}

func TestApplyAffectStockOnlySkipsProduction(t *testing.T) {
	got := Apply(testCollections(), Filter{AffectStockOnly: true})

	assert.Len(t, got.Purchases, 2)
	assert.Len(t, got.Sales, 1)
	// Production entries are kept even with zero line items.
	assert.Len(t, got.Productions, 1)
}

func TestApplyFreeTextIsCaseInsensitive(t *testing.T) {
	c := Collections{
		Sales: []Entry{
			{ID: 1, Type: TypeSale, Date: date("2024-01-01"), Notes: "Kirim ke Padang"},
			{ID: 2, Type: TypeSale, Date: date("2024-01-02"), Notes: "lunas"},
		},
	}
	got := Apply(c, Filter{FreeText: "pAdAnG"})

	require.Len(t, got.Sales, 1)
	assert.Equal(t, int64(1), got.Sales[0].ID)
}

func TestApplyCounterpartySubstring(t *testing.T) {
	c := Collections{
		Purchases: []Entry{
			{ID: 1, Type: TypePurchase, Date: date("2024-01-01"), Counterparty: "Pak Rahmat"},
			{ID: 2, Type: TypePurchase, Date: date("2024-01-02"), Counterparty: "Bu Sari"},
		},
	}
	got := Apply(c, Filter{CounterpartySubstr: "rahmat"})

	require.Len(t, got.Purchases, 1)
	assert.Equal(t, int64(1), got.Purchases[0].ID)
}

func TestApplyDateRangeIsInclusive(t *testing.T) {
	start := date("2024-01-08")
	end := date("2024-01-10")
	got := Apply(testCollections(), Filter{DateStart: &start, DateEnd: &end})

	ids := map[EntryType][]int64{}
	for _, e := range got.All() {
		ids[e.Type] = append(ids[e.Type], e.ID)
	}
	assert.Equal(t, []int64{2}, ids[TypePurchase])
	assert.Equal(t, []int64{1}, ids[TypeSale])
	assert.Equal(t, []int64{1}, ids[TypeProduction])
}

func TestApplyComposesAssociatively(t *testing.T) {
	status := StatusPosted
	combined := Filter{Status: &status, MinAmount: fl(1000), FreeText: ""}
	first := Filter{Status: &status}
	second := Filter{MinAmount: fl(1000)}

	c := testCollections()
	once := Apply(c, combined)
	twice := Apply(Apply(c, first), second)

	assert.Equal(t, once, twice)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	c := testCollections()
	before := c.All()

	status := StatusDraft
	_ = Apply(c, Filter{Status: &status, MinAmount: fl(1)})

	assert.Equal(t, before, c.All())
}
