package ledgerhttp

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestParseRequestFullQuery(t *testing.T) {
	q := url.Values{}
	q.Set("start", "2024-01-01")
	q.Set("end", "2024-01-31")
	q.Set("type", "purchase")
	q.Set("status", "posted")
	q.Set("affectStockOnly", "true")
	q.Set("product", "7")
	q.Set("party", "rahmat")
	q.Set("q", "lunas")
	q.Set("min", "1000")
	q.Set("max", "50000")
	q.Set("page", "3")
	q.Set("size", "50")
	q.Set("selected", "12")

	req := parseRequest(q)

	require.NotNil(t, req.Filter.DateStart)
	assert.Equal(t, "2024-01-01", req.Filter.DateStart.Format("2006-01-02"))
	require.NotNil(t, req.Filter.Type)
	assert.Equal(t, ledger.TypePurchase, *req.Filter.Type)
	require.NotNil(t, req.Filter.Status)
	assert.Equal(t, ledger.StatusPosted, *req.Filter.Status)
	assert.True(t, req.Filter.AffectStockOnly)
	require.NotNil(t, req.Filter.ProductID)
	assert.Equal(t, int64(7), *req.Filter.ProductID)
	assert.Equal(t, "rahmat", req.Filter.CounterpartySubstr)
	assert.Equal(t, "lunas", req.Filter.FreeText)
	require.NotNil(t, req.Filter.MinAmount)
	assert.Equal(t, 1000.0, *req.Filter.MinAmount)
	require.NotNil(t, req.Filter.MaxAmount)
	assert.Equal(t, 50000.0, *req.Filter.MaxAmount)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 50, req.PageSize)
	require.NotNil(t, req.SelectedID)
	assert.Equal(t, int64(12), *req.SelectedID)
}

func TestParseRequestMalformedValuesDegradeToUnset(t *testing.T) {
	q := url.Values{}
	q.Set("start", "not-a-date")
	q.Set("type", "refund")
	q.Set("status", "archived")
	q.Set("affectStockOnly", "yes")
	q.Set("product", "zero")
	q.Set("min", "cheap")
	q.Set("max", "")
	q.Set("page", "minus one")
	q.Set("size", "-5")
	q.Set("selected", "abc")

	req := parseRequest(q)

	assert.Nil(t, req.Filter.DateStart)
	assert.Nil(t, req.Filter.Type)
	assert.Nil(t, req.Filter.Status)
	assert.False(t, req.Filter.AffectStockOnly)
	assert.Nil(t, req.Filter.ProductID)
	assert.Nil(t, req.Filter.MinAmount)
	assert.Nil(t, req.Filter.MaxAmount)
	assert.Equal(t, 1, req.Page)
	assert.Zero(t, req.PageSize, "size left for the service to clamp to default")
	assert.Nil(t, req.SelectedID)
}

func TestParseRequestEmptyQueryDefaults(t *testing.T) {
	req := parseRequest(url.Values{})

	assert.Equal(t, ledger.Filter{}, req.Filter)
	assert.Equal(t, 1, req.Page)
	assert.Zero(t, req.PageSize)
	assert.Nil(t, req.SelectedID)
}

func TestPageURLCarriesOtherParams(t *testing.T) {
	q := url.Values{}
	q.Set("status", "posted")
	q.Set("party", "rahmat")
	q.Set("page", "2")

	u := pageURL(q, 3)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	values := parsed.Query()
	assert.Equal(t, "3", values.Get("page"))
	assert.Equal(t, "posted", values.Get("status"))
	assert.Equal(t, "rahmat", values.Get("party"))
}

func TestTotalLabelDashForNilAmount(t *testing.T) {
	e := ledger.Entry{Type: ledger.TypeSale}
	assert.Equal(t, "-", totalLabel(e))
}

func TestRowFromEntryLabels(t *testing.T) {
	total := 12500.0
	e := ledger.Entry{
		ID:           4,
		Type:         ledger.TypeSale,
		Date:         mustDate(t, "2024-06-01"),
		Status:       ledger.StatusPosted,
		Reference:    "PJ-2024-0004",
		Counterparty: "Toko Sinar",
		Total:        &total,
		StockImpact:  ledger.ImpactOut,
	}

	row := rowFromEntry(e)

	assert.Equal(t, "Penjualan", row.TypeLabel)
	assert.Equal(t, "Tercatat", row.StatusLabel)
	assert.Equal(t, "OUT", row.ImpactBadge)
	assert.Equal(t, "/sales/4", row.DetailURL)
	assert.NotEqual(t, "-", row.TotalLabel)
}
