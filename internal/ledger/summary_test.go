package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeCountsAndNominalTotals(t *testing.T) {
	c := Collections{
		Purchases: []Entry{
			entry(1, TypePurchase, date("2024-01-01"), StatusPosted, fl(10000), 1),
			entry(2, TypePurchase, date("2024-01-02"), StatusDraft, nil, 0),
		},
		Sales: []Entry{
			entry(1, TypeSale, date("2024-01-03"), StatusPosted, fl(4000), 1),
		},
		Productions: []Entry{
			entry(1, TypeProduction, date("2024-01-04"), StatusPosted, fl(1000), 2),
		},
	}

	s := Summarize(c)

	assert.Equal(t, 2, s.Purchase.Count)
	assert.Equal(t, 10000.0, s.Purchase.Nominal) // nil counted as zero
	assert.Equal(t, 1, s.Sale.Count)
	assert.Equal(t, 4000.0, s.Sale.Nominal)
	assert.Equal(t, 1, s.Production.Count)
	assert.Equal(t, 1000.0, s.Production.Nominal)
}

func TestSummarizeGrandTotalExcludesProductionCost(t *testing.T) {
	c := Collections{
		Purchases:   []Entry{entry(1, TypePurchase, date("2024-01-01"), StatusPosted, fl(10000), 1)},
		Sales:       []Entry{entry(1, TypeSale, date("2024-01-02"), StatusPosted, fl(4000), 1)},
		Productions: []Entry{entry(1, TypeProduction, date("2024-01-03"), StatusPosted, fl(99999), 1)},
	}

	s := Summarize(c)

	assert.Equal(t, 14000.0, s.GrandTotal)
}

func TestSummarizeEmptyCollections(t *testing.T) {
	s := Summarize(Collections{})

	assert.Zero(t, s.Purchase.Count)
	assert.Zero(t, s.Sale.Nominal)
	assert.Zero(t, s.GrandTotal)
}
