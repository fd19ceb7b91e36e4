package ledgerhttp

import (
	"net/url"
	"strconv"
	"time"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
)

const dateLayout = "2006-01-02"

// parseRequest maps the query string onto a ledger view request. Every
// malformed value degrades to "filter unset"; this screen never rejects a
// request over bad input.
func parseRequest(q url.Values) ledger.ViewRequest {
	var req ledger.ViewRequest

	req.Filter.DateStart = parseDate(q.Get("start"))
	req.Filter.DateEnd = parseDate(q.Get("end"))
	req.Filter.Type = parseType(q.Get("type"))
	req.Filter.Status = parseStatus(q.Get("status"))
	req.Filter.AffectStockOnly = q.Get("affectStockOnly") == "true"
	req.Filter.ProductID = parseInt64(q.Get("product"))
	req.Filter.CounterpartySubstr = q.Get("party")
	req.Filter.FreeText = q.Get("q")
	req.Filter.MinAmount = parseFloat(q.Get("min"))
	req.Filter.MaxAmount = parseFloat(q.Get("max"))

	req.Page = parsePositiveInt(q.Get("page"), 1)
	req.PageSize = parsePositiveInt(q.Get("size"), 0)
	req.SelectedID = parseInt64(q.Get("selected"))

	return req
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

func parseType(raw string) *ledger.EntryType {
	switch ledger.EntryType(raw) {
	case ledger.TypePurchase, ledger.TypeSale, ledger.TypeProduction:
		t := ledger.EntryType(raw)
		return &t
	}
	return nil
}

func parseStatus(raw string) *ledger.Status {
	switch ledger.Status(raw) {
	case ledger.StatusDraft, ledger.StatusPosted, ledger.StatusCancelled:
		s := ledger.Status(raw)
		return &s
	}
	return nil
}

func parseInt64(raw string) *int64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
