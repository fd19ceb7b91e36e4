package nota

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cassia-erp/cassia-erp/internal/masterdata/products"
	"github.com/cassia-erp/cassia-erp/internal/purchasing"
	"github.com/cassia-erp/cassia-erp/internal/sales"
	"github.com/cassia-erp/cassia-erp/report"
)

// PurchasingPort loads purchase transactions.
type PurchasingPort interface {
	Get(ctx context.Context, id int64) (purchasing.Purchase, []purchasing.Item, error)
}

// SalesPort loads sale transactions.
type SalesPort interface {
	Get(ctx context.Context, id int64) (sales.Sale, []sales.Item, error)
}

// ProductPort resolves product names for receipt lines.
type ProductPort interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// PDFPort converts HTML into PDF bytes.
type PDFPort interface {
	RenderHTML(ctx context.Context, html string, opts report.Options) ([]byte, error)
}

// Document is a finished PDF ready to stream to the browser.
type Document struct {
	Filename string
	Content  []byte
}

// Service assembles receipt payloads and hands them to Gotenberg.
type Service struct {
	purchasing PurchasingPort
	sales      SalesPort
	products   ProductPort
	renderer   *Renderer
	pdf        PDFPort
	now        func() time.Time
}

// NewService constructs the nota service.
func NewService(purchasingPort PurchasingPort, salesPort SalesPort, productPort ProductPort, renderer *Renderer, pdf PDFPort) *Service {
	return &Service{
		purchasing: purchasingPort,
		sales:      salesPort,
		products:   productPort,
		renderer:   renderer,
		pdf:        pdf,
		now:        time.Now,
	}
}

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// PurchasePDF renders the receipt of a posted purchase.
func (s *Service) PurchasePDF(ctx context.Context, id int64) (Document, error) {
	purchase, items, err := s.purchasing.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if purchase.Status != purchasing.StatusPosted {
		return Document{}, ErrNotPosted
	}
	payload := Payload{
		DocType:    "Nota Pembelian",
		Number:     purchase.Number,
		Date:       purchase.Date,
		PartyLabel: "Pemasok",
		PartyName:  purchase.SupplierName,
		Notes:      purchase.Notes,
		Total:      formatRupiahString(purchase.Total),
		PrintedAt:  s.now(),
	}
	for i, item := range items {
		line, err := s.buildLine(ctx, i+1, item.ProductID, item.Qty, item.UnitCost)
		if err != nil {
			return Document{}, err
		}
		payload.Lines = append(payload.Lines, line)
	}
	return s.finish(ctx, payload)
}

// SalePDF renders the receipt of a posted sale.
func (s *Service) SalePDF(ctx context.Context, id int64) (Document, error) {
	sale, items, err := s.sales.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if sale.Status != sales.StatusPosted {
		return Document{}, ErrNotPosted
	}
	payload := Payload{
		DocType:    "Nota Penjualan",
		Number:     sale.Number,
		Date:       sale.Date,
		PartyLabel: "Pelanggan",
		PartyName:  sale.CustomerName,
		Notes:      sale.Notes,
		Total:      formatRupiahString(sale.Total),
		PrintedAt:  s.now(),
	}
	for i, item := range items {
		line, err := s.buildLine(ctx, i+1, item.ProductID, item.Qty, item.UnitPrice)
		if err != nil {
			return Document{}, err
		}
		payload.Lines = append(payload.Lines, line)
	}
	return s.finish(ctx, payload)
}

func (s *Service) finish(ctx context.Context, payload Payload) (Document, error) {
	html, err := s.renderer.Render(payload)
	if err != nil {
		return Document{}, err
	}
	content, err := s.pdf.RenderHTML(ctx, html, report.NotaOptions())
	if err != nil {
		return Document{}, fmt.Errorf("nota: convert %s: %w", payload.Number, err)
	}
	return Document{Filename: payload.Number + ".pdf", Content: content}, nil
}

func (s *Service) buildLine(ctx context.Context, no int, productID int64, qty, unitAmount string) (Line, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	qtyDec, err := decimal.NewFromString(qty)
	if err != nil {
		return Line{}, fmt.Errorf("nota: qty %q: %w", qty, err)
	}
	amountDec, err := decimal.NewFromString(unitAmount)
	if err != nil {
		return Line{}, fmt.Errorf("nota: unit amount %q: %w", unitAmount, err)
	}
	return Line{
		No:          no,
		ProductName: product.Name,
		Unit:        product.Unit,
		Qty:         qtyDec.String(),
		UnitAmount:  formatRupiah(amountDec),
		Subtotal:    formatRupiah(qtyDec.Mul(amountDec)),
	}, nil
}

func formatRupiah(d decimal.Decimal) string {
	return "Rp " + rupiahPrinter.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(0)))
}

func formatRupiahString(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return formatRupiah(d)
}
