package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNormalizePurchaseComputesTotal(t *testing.T) {
	rec := Record{
		ID:           7,
		Reference:    "PB-2024-0007",
		Date:         date("2024-01-05"),
		Status:       StatusPosted,
		Counterparty: "Pak Rahmat",
		Items:        []LineItem{{ProductID: 1, Qty: "10", UnitAmount: "1000"}},
	}

	entry := NormalizePurchase(rec)

	assert.Equal(t, TypePurchase, entry.Type)
	assert.Equal(t, ImpactIn, entry.StockImpact)
	assert.Equal(t, 1, entry.ItemCount)
	require.NotNil(t, entry.Total)
	assert.Equal(t, 10000.0, *entry.Total)
	assert.Nil(t, entry.ProductionCost)
}

func TestNormalizeSaleZeroQuantityLineContributesNothing(t *testing.T) {
	rec := Record{
		ID:     3,
		Date:   date("2024-02-01"),
		Status: StatusPosted,
		Items: []LineItem{
			{ProductID: 1, Qty: "2", UnitAmount: "500"},
			{ProductID: 2, Qty: "0", UnitAmount: "999"},
		},
	}

	entry := NormalizeSale(rec)

	assert.Equal(t, ImpactOut, entry.StockImpact)
	assert.Equal(t, 2, entry.ItemCount)
	require.NotNil(t, entry.Total)
	assert.Equal(t, 1000.0, *entry.Total)
}

func TestNormalizeUnparsableLineIsSkippedNotFatal(t *testing.T) {
	rec := Record{
		ID:   9,
		Date: date("2024-03-10"),
		Items: []LineItem{
			{ProductID: 1, Qty: "abc", UnitAmount: "100"},
			{ProductID: 2, Qty: "3", UnitAmount: ""},
			{ProductID: 3, Qty: "4", UnitAmount: "250"},
		},
	}

	entry := NormalizePurchase(rec)

	require.NotNil(t, entry.Total)
	assert.Equal(t, 1000.0, *entry.Total)
	assert.Equal(t, 3, entry.ItemCount)
}

func TestNormalizeZeroSumYieldsNilTotal(t *testing.T) {
	cases := map[string]Record{
		"no items":        {ID: 1, Date: date("2024-01-01")},
		"all unparsable":  {ID: 2, Date: date("2024-01-01"), Items: []LineItem{{Qty: "x", UnitAmount: "y"}}},
		"zero quantities": {ID: 3, Date: date("2024-01-01"), Items: []LineItem{{Qty: "0", UnitAmount: "5000"}}},
		"negative sum":    {ID: 4, Date: date("2024-01-01"), Items: []LineItem{{Qty: "-2", UnitAmount: "100"}}},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, NormalizePurchase(rec).Total)
		})
	}
}

func TestNormalizeProductionValuesInputsOnly(t *testing.T) {
	rec := ProductionRecord{
		ID:       5,
		Date:     date("2024-04-02"),
		Status:   StatusPosted,
		TypeName: "Penggilingan bubuk",
		Inputs:   []LineItem{{ProductID: 1, Qty: "5", UnitAmount: "200"}},
		Outputs:  []LineItem{{ProductID: 2, Qty: "3", UnitAmount: "500"}},
	}

	entry := NormalizeProduction(rec)

	assert.Equal(t, TypeProduction, entry.Type)
	assert.Equal(t, ImpactNeutral, entry.StockImpact)
	assert.Equal(t, "Penggilingan bubuk", entry.Counterparty)
	assert.Nil(t, entry.Total)
	require.NotNil(t, entry.ProductionCost)
	assert.Equal(t, 1000.0, *entry.ProductionCost)
	assert.Equal(t, 2, entry.ItemCount)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	rec := Record{
		ID:           11,
		Reference:    "PJ-2024-0011",
		Date:         date("2024-05-20"),
		Status:       StatusDraft,
		Counterparty: "Toko Sinar",
		Notes:        "setengah dibayar",
		Items:        []LineItem{{ProductID: 1, Qty: "2.5", UnitAmount: "12000.50"}},
	}

	first := NormalizeSale(rec)
	second := NormalizeSale(rec)

	require.NotNil(t, first.Total)
	require.NotNil(t, second.Total)
	assert.Equal(t, *first.Total, *second.Total)
	first.Total = nil
	second.Total = nil
	assert.Equal(t, first, second)
}

func TestAmountPicksProductionCostForProduction(t *testing.T) {
	cost := 1500.0
	total := 2500.0
	prod := Entry{Type: TypeProduction, ProductionCost: &cost}
	sale := Entry{Type: TypeSale, Total: &total}

	require.NotNil(t, prod.Amount())
	assert.Equal(t, cost, *prod.Amount())
	require.NotNil(t, sale.Amount())
	assert.Equal(t, total, *sale.Amount())
}
