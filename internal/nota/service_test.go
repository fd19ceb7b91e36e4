package nota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cassia-erp/cassia-erp/internal/masterdata/products"
	"github.com/cassia-erp/cassia-erp/internal/purchasing"
	"github.com/cassia-erp/cassia-erp/internal/sales"
	"github.com/cassia-erp/cassia-erp/report"
	"github.com/cassia-erp/cassia-erp/web"
)

type mockPurchasing struct {
	purchase purchasing.Purchase
	items    []purchasing.Item
	err      error
}

func (m *mockPurchasing) Get(_ context.Context, _ int64) (purchasing.Purchase, []purchasing.Item, error) {
	return m.purchase, m.items, m.err
}

type mockSales struct {
	sale  sales.Sale
	items []sales.Item
	err   error
}

func (m *mockSales) Get(_ context.Context, _ int64) (sales.Sale, []sales.Item, error) {
	return m.sale, m.items, m.err
}

type mockProducts struct {
	byID map[int64]products.Product
}

func (m *mockProducts) Get(_ context.Context, id int64) (products.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

type capturePDF struct {
	html string
	opts report.Options
}

func (c *capturePDF) RenderHTML(_ context.Context, html string, opts report.Options) ([]byte, error) {
	c.html = html
	c.opts = opts
	return []byte("%PDF-1.7 fake"), nil
}

func newTestService(t *testing.T, purchasingPort PurchasingPort, salesPort SalesPort) (*Service, *capturePDF) {
	t.Helper()
	renderer, err := NewRenderer(web.FS)
	require.NoError(t, err)
	pdf := &capturePDF{}
	svc := NewService(purchasingPort, salesPort, &mockProducts{byID: map[int64]products.Product{
		1: {ID: 1, SKU: "KM-BATANG-A", Name: "Kulit Manis Batang Grade A", Unit: "kg"},
		2: {ID: 2, SKU: "KM-BUBUK", Name: "Bubuk Kayu Manis", Unit: "kg"},
	}}, renderer, pdf)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC) }
	return svc, pdf
}

func TestSalePDFRendersPostedReceipt(t *testing.T) {
	salesPort := &mockSales{
		sale: sales.Sale{
			ID:           7,
			Number:       "PJ-20240518-123456",
			CustomerName: "Toko Rempah Makmur",
			Date:         time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC),
			Status:       sales.StatusPosted,
			Total:        "360000",
		},
		items: []sales.Item{
			{ProductID: 1, Qty: "4", UnitPrice: "75000"},
			{ProductID: 2, Qty: "0.5", UnitPrice: "120000"},
		},
	}
	svc, pdf := newTestService(t, &mockPurchasing{}, salesPort)

	doc, err := svc.SalePDF(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "PJ-20240518-123456.pdf", doc.Filename)
	require.NotEmpty(t, doc.Content)

	require.Contains(t, pdf.html, "Nota Penjualan")
	require.Contains(t, pdf.html, "Toko Rempah Makmur")
	require.Contains(t, pdf.html, "Kulit Manis Batang Grade A")
	require.Contains(t, pdf.html, "Rp 360.000")
	require.Contains(t, pdf.html, "Rp 60.000")
	require.Equal(t, report.NotaOptions(), pdf.opts)
}

func TestSalePDFRejectsDraft(t *testing.T) {
	salesPort := &mockSales{
		sale: sales.Sale{ID: 7, Number: "PJ-1", Status: sales.StatusDraft},
	}
	svc, _ := newTestService(t, &mockPurchasing{}, salesPort)

	_, err := svc.SalePDF(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotPosted)
}

func TestPurchasePDFRendersPostedReceipt(t *testing.T) {
	purchasingPort := &mockPurchasing{
		purchase: purchasing.Purchase{
			ID:           3,
			Number:       "PB-20240510-654321",
			SupplierName: "Pak Syafri",
			Date:         time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			Status:       purchasing.StatusPosted,
			Total:        "1500000",
		},
		items: []purchasing.Item{
			{ProductID: 1, Qty: "100", UnitCost: "15000"},
		},
	}
	svc, pdf := newTestService(t, purchasingPort, &mockSales{})

	doc, err := svc.PurchasePDF(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "PB-20240510-654321.pdf", doc.Filename)
	require.Contains(t, pdf.html, "Nota Pembelian")
	require.Contains(t, pdf.html, "Pemasok")
	require.Contains(t, pdf.html, "Rp 1.500.000")
}

func TestPurchasePDFRejectsCancelled(t *testing.T) {
	purchasingPort := &mockPurchasing{
		purchase: purchasing.Purchase{ID: 3, Number: "PB-1", Status: purchasing.StatusCancelled},
	}
	svc, _ := newTestService(t, purchasingPort, &mockSales{})

	_, err := svc.PurchasePDF(context.Background(), 3)
	require.ErrorIs(t, err, ErrNotPosted)
}
