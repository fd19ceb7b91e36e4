package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Sale, []Item, error)
	List(ctx context.Context, q ListQuery) ([]Sale, map[int64][]Item, error)
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the sale lifecycle.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	cache *ledger.SummaryCache
}

// NewService constructs the sales service. Audit and cache may be nil.
func NewService(repo RepositoryPort, audit AuditPort, cache *ledger.SummaryCache) *Service {
	return &Service{repo: repo, audit: audit, cache: cache}
}

// ItemInput is one requested sale line. Amounts arrive as decimal strings.
type ItemInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Qty       string `json:"qty" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

// CreateInput describes a new draft sale.
type CreateInput struct {
	CustomerID int64       `json:"customer_id" validate:"required,gt=0"`
	Date       time.Time   `json:"date" validate:"required"`
	Notes      string      `json:"notes"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateInput mirrors CreateInput for draft edits.
type UpdateInput struct {
	CustomerID int64       `json:"customer_id" validate:"required,gt=0"`
	Date       time.Time   `json:"date" validate:"required"`
	Notes      string      `json:"notes"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create persists a draft sale with its items.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (Sale, error) {
	if err := validateItems(input.Items); err != nil {
		return Sale{}, err
	}
	sale := Sale{
		Number:     generateNumber("PJ", input.Date),
		CustomerID: input.CustomerID,
		Date:       defaultTime(input.Date),
		Status:     StatusDraft,
		Notes:      input.Notes,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Insert(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id
		for _, item := range input.Items {
			if err := tx.InsertItem(ctx, Item{SaleID: id, ProductID: item.ProductID, Qty: item.Qty, UnitPrice: item.UnitPrice}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, actorID, "SALE_CREATE", sale.ID, map[string]any{"number": sale.Number})
	return sale, nil
}

// Update replaces the header and items of a draft sale.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, actorID int64) error {
	current, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != StatusDraft {
		return ErrInvalidState
	}
	if err := validateItems(input.Items); err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current.CustomerID = input.CustomerID
		current.Date = defaultTime(input.Date)
		current.Notes = input.Notes
		if err := tx.UpdateHeader(ctx, current); err != nil {
			return err
		}
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		for _, item := range input.Items {
			if err := tx.InsertItem(ctx, Item{SaleID: id, ProductID: item.ProductID, Qty: item.Qty, UnitPrice: item.UnitPrice}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "SALE_UPDATE", id, nil)
	return nil
}

// Post transitions a draft to posted, fixing the exact decimal total.
func (s *Service) Post(ctx context.Context, id int64, actorID int64) error {
	current, items, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != StatusDraft {
		return ErrInvalidState
	}
	total := decimal.Zero
	for _, item := range items {
		qty, err := decimal.NewFromString(item.Qty)
		if err != nil {
			return fmt.Errorf("%w: qty %q", ErrValidation, item.Qty)
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return fmt.Errorf("%w: unit price %q", ErrValidation, item.UnitPrice)
		}
		total = total.Add(qty.Mul(price))
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusPosted, total.String())
	})
	if err != nil {
		return err
	}
	s.invalidateLedger(ctx)
	s.recordAudit(ctx, actorID, "SALE_POST", id, map[string]any{"total": total.String()})
	return nil
}

// Cancel voids a sale. The record is kept for the ledger.
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64) error {
	current, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusCancelled {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusCancelled, current.Total)
	})
	if err != nil {
		return err
	}
	s.invalidateLedger(ctx)
	s.recordAudit(ctx, actorID, "SALE_CANCEL", id, nil)
	return nil
}

// Get returns one sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (Sale, []Item, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales matching the query with their items.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Sale, map[int64][]Item, error) {
	return s.repo.List(ctx, q)
}

// ListForLedger adapts sales into the ledger's common record shape.
func (s *Service) ListForLedger(ctx context.Context, q ledger.SourceQuery) ([]ledger.Record, error) {
	listQ := ListQuery{
		DateStart:      q.DateStart,
		DateEnd:        q.DateEnd,
		CustomerSubstr: q.CounterpartySubstr,
		ProductID:      q.ProductID,
	}
	if q.Status != nil {
		status := Status(*q.Status)
		listQ.Status = &status
	}
	sales, items, err := s.repo.List(ctx, listQ)
	if err != nil {
		return nil, err
	}
	records := make([]ledger.Record, len(sales))
	for i, sale := range sales {
		rec := ledger.Record{
			ID:           sale.ID,
			Reference:    sale.Number,
			Date:         sale.Date,
			Status:       ledger.Status(sale.Status),
			Counterparty: sale.CustomerName,
			Notes:        sale.Notes,
		}
		for _, item := range items[sale.ID] {
			rec.Items = append(rec.Items, ledger.LineItem{ProductID: item.ProductID, Qty: item.Qty, UnitAmount: item.UnitPrice})
		}
		records[i] = rec
	}
	return records, nil
}

func (s *Service) invalidateLedger(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sale",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: minimal 1 baris", ErrValidation)
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: produk wajib dipilih", ErrValidation)
		}
		qty, err := decimal.NewFromString(item.Qty)
		if err != nil || qty.Sign() <= 0 {
			return fmt.Errorf("%w: jumlah %q", ErrValidation, item.Qty)
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || price.Sign() < 0 {
			return fmt.Errorf("%w: harga %q", ErrValidation, item.UnitPrice)
		}
	}
	return nil
}

func generateNumber(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%d", prefix, defaultTime(date).Format("20060102"), time.Now().UnixNano()%1_000_000)
}

func defaultTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now()
	}
	return value
}
