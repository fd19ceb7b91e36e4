package ledgerhttp

import (
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
)

var rupiah = message.NewPrinter(language.Indonesian)

// Row is one rendered ledger table row.
type Row struct {
	DateLabel    string
	TypeLabel    string
	Reference    string
	Counterparty string
	TotalLabel   string
	ImpactBadge  string
	StatusLabel  string
	DetailURL    string
}

// SummaryVM drives the badge strip above the table.
type SummaryVM struct {
	PurchaseCount   int
	PurchaseNominal string
	SaleCount       int
	SaleNominal     string
	ProductionCount int
	ProductionCost  string
	GrandTotal      string
}

// LedgerVM drives the ledger page rendering.
type LedgerVM struct {
	Rows     []Row
	Summary  SummaryVM
	Selected *Row
	Filters  map[string]string
	Page     int
	PrevURL  string
	NextURL  string
	HasPrev  bool
	HasNext  bool
}

// buildViewModel maps the service view onto display rows. The raw query is
// carried along so pagination links preserve every other parameter.
func buildViewModel(view ledger.View, query url.Values) LedgerVM {
	vm := LedgerVM{
		Rows: make([]Row, len(view.Entries)),
		Summary: SummaryVM{
			PurchaseCount:   view.Summary.Purchase.Count,
			PurchaseNominal: formatRupiah(view.Summary.Purchase.Nominal),
			SaleCount:       view.Summary.Sale.Count,
			SaleNominal:     formatRupiah(view.Summary.Sale.Nominal),
			ProductionCount: view.Summary.Production.Count,
			ProductionCost:  formatRupiah(view.Summary.Production.Nominal),
			GrandTotal:      formatRupiah(view.Summary.GrandTotal),
		},
		Filters: flattenFilters(query),
		Page:    view.Pagination.Page,
		HasPrev: view.Pagination.HasPrev(),
		HasNext: view.Pagination.HasNext(),
	}
	for i, e := range view.Entries {
		vm.Rows[i] = rowFromEntry(e)
	}
	if view.Selected != nil {
		row := rowFromEntry(*view.Selected)
		vm.Selected = &row
	}
	if vm.HasPrev {
		vm.PrevURL = pageURL(query, view.Pagination.Page-1)
	}
	if vm.HasNext {
		vm.NextURL = pageURL(query, view.Pagination.Page+1)
	}
	return vm
}

func rowFromEntry(e ledger.Entry) Row {
	return Row{
		DateLabel:    e.Date.Format("02 Jan 2006"),
		TypeLabel:    typeLabel(e.Type),
		Reference:    e.Reference,
		Counterparty: e.Counterparty,
		TotalLabel:   totalLabel(e),
		ImpactBadge:  string(e.StockImpact),
		StatusLabel:  statusLabel(e.Status),
		DetailURL:    detailURL(e),
	}
}

// totalLabel renders a dash for entries without a meaningful amount.
func totalLabel(e ledger.Entry) string {
	amount := e.Amount()
	if amount == nil {
		return "-"
	}
	return formatRupiah(*amount)
}

func formatRupiah(v float64) string {
	return rupiah.Sprintf("Rp%v", number.Decimal(v, number.MaxFractionDigits(0)))
}

func typeLabel(t ledger.EntryType) string {
	switch t {
	case ledger.TypePurchase:
		return "Pembelian"
	case ledger.TypeSale:
		return "Penjualan"
	case ledger.TypeProduction:
		return "Produksi"
	}
	return string(t)
}

func statusLabel(s ledger.Status) string {
	switch s {
	case ledger.StatusDraft:
		return "Draf"
	case ledger.StatusPosted:
		return "Tercatat"
	case ledger.StatusCancelled:
		return "Dibatalkan"
	}
	return string(s)
}

func detailURL(e ledger.Entry) string {
	switch e.Type {
	case ledger.TypePurchase:
		return fmt.Sprintf("/purchasing/%d", e.ID)
	case ledger.TypeSale:
		return fmt.Sprintf("/sales/%d", e.ID)
	case ledger.TypeProduction:
		return fmt.Sprintf("/production/%d", e.ID)
	}
	return ""
}

// pageURL rewrites only the page parameter, keeping all other filters.
func pageURL(query url.Values, page int) string {
	next := url.Values{}
	for key, vals := range query {
		for _, v := range vals {
			next.Add(key, v)
		}
	}
	next.Set("page", strconv.Itoa(page))
	return "/ledger?" + next.Encode()
}

func flattenFilters(query url.Values) map[string]string {
	out := make(map[string]string, len(query))
	for key := range query {
		out[key] = query.Get(key)
	}
	return out
}
