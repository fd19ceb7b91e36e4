package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortEntriesDateDescending(t *testing.T) {
	entries := []Entry{
		{ID: 1, Type: TypeSale, Date: date("2024-01-01")},
		{ID: 2, Type: TypeSale, Date: date("2024-03-01")},
		{ID: 3, Type: TypeSale, Date: date("2024-02-01")},
	}

	sorted := SortEntries(entries)

	assert.Equal(t, []int64{2, 3, 1}, entryIDs(sorted))
}

func TestSortEntriesTieBreaksOnTypeLabelAscending(t *testing.T) {
	d := date("2024-01-15")
	entries := []Entry{
		{ID: 1, Type: TypeSale, Date: d},
		{ID: 2, Type: TypePurchase, Date: d},
		{ID: 3, Type: TypeProduction, Date: d},
	}

	sorted := SortEntries(entries)

	// Lexicographic labels: production < purchase < sale.
	assert.Equal(t, TypeProduction, sorted[0].Type)
	assert.Equal(t, TypePurchase, sorted[1].Type)
	assert.Equal(t, TypeSale, sorted[2].Type)
}

func TestSortEntriesIsStable(t *testing.T) {
	d := date("2024-01-15")
	entries := []Entry{
		{ID: 10, Type: TypeSale, Date: d, Reference: "first"},
		{ID: 11, Type: TypeSale, Date: d, Reference: "second"},
		{ID: 12, Type: TypeSale, Date: d, Reference: "third"},
	}

	sorted := SortEntries(entries)

	assert.Equal(t, []int64{10, 11, 12}, entryIDs(sorted))
}

func TestSortEntriesDoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{ID: 1, Type: TypeSale, Date: date("2024-01-01")},
		{ID: 2, Type: TypeSale, Date: date("2024-03-01")},
	}

	_ = SortEntries(entries)

	assert.Equal(t, int64(1), entries[0].ID)
}

func TestPaginateWindows(t *testing.T) {
	entries := make([]Entry, 45)
	for i := range entries {
		entries[i] = Entry{ID: int64(i + 1), Type: TypeSale, Date: date("2024-01-01")}
	}

	assert.Len(t, Paginate(entries, 1, 20), 20)
	assert.Len(t, Paginate(entries, 2, 20), 20)
	assert.Len(t, Paginate(entries, 3, 20), 5)
	assert.Empty(t, Paginate(entries, 4, 20))
}

func TestPaginateConcatenationReproducesWholeList(t *testing.T) {
	entries := make([]Entry, 73)
	for i := range entries {
		entries[i] = Entry{ID: int64(i + 1), Type: TypeSale, Date: date("2024-01-01")}
	}

	var all []Entry
	for page := 1; ; page++ {
		chunk := Paginate(entries, page, 20)
		if len(chunk) == 0 {
			break
		}
		all = append(all, chunk...)
	}

	require.Len(t, all, len(entries))
	assert.Equal(t, entryIDs(entries), entryIDs(all))
}

func TestClampPageSize(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 20},
		{5, 10},
		{10, 10},
		{50, 50},
		{100, 100},
		{500, 100},
		{-3, 10},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("size %d", tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, ClampPageSize(tc.in))
		})
	}
}

func TestPaginateOutOfRangePageIsEmptyNotError(t *testing.T) {
	entries := []Entry{{ID: 1, Type: TypeSale, Date: date("2024-01-01")}}

	assert.Empty(t, Paginate(entries, 99, 20))
	assert.Empty(t, Paginate(nil, 1, 20))
}

func entryIDs(entries []Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
