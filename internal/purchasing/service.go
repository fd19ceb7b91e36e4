package purchasing

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
	Get(ctx context.Context, id int64) (Purchase, []Item, error)
	List(ctx context.Context, q ListQuery) ([]Purchase, map[int64][]Item, error)
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the purchase lifecycle.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	cache *ledger.SummaryCache
}

// NewService constructs the purchasing service. Audit and cache may be nil.
func NewService(repo RepositoryPort, audit AuditPort, cache *ledger.SummaryCache) *Service {
	return &Service{repo: repo, audit: audit, cache: cache}
}

// ItemInput is one requested purchase line. Amounts arrive as decimal strings.
type ItemInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Qty       string `json:"qty" validate:"required"`
	UnitCost  string `json:"unit_cost" validate:"required"`
}

// CreateInput describes a new draft purchase.
type CreateInput struct {
	SupplierID int64       `json:"supplier_id" validate:"required,gt=0"`
	Date       time.Time   `json:"date" validate:"required"`
	Notes      string      `json:"notes"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateInput mirrors CreateInput for draft edits.
type UpdateInput struct {
	SupplierID int64       `json:"supplier_id" validate:"required,gt=0"`
	Date       time.Time   `json:"date" validate:"required"`
	Notes      string      `json:"notes"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create persists a draft purchase with its items.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (Purchase, error) {
	if err := validateItems(input.Items); err != nil {
		return Purchase{}, err
	}
	p := Purchase{
		Number:     generateNumber("PB", input.Date),
		SupplierID: input.SupplierID,
		Date:       defaultTime(input.Date),
		Status:     StatusDraft,
		Notes:      input.Notes,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Insert(ctx, p)
		if err != nil {
			return err
		}
		p.ID = id
		for _, item := range input.Items {
			if err := tx.InsertItem(ctx, Item{PurchaseID: id, ProductID: item.ProductID, Qty: item.Qty, UnitCost: item.UnitCost}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	s.recordAudit(ctx, actorID, "PURCHASE_CREATE", p.ID, map[string]any{"number": p.Number})
	return p, nil
}

// Update replaces the header and items of a draft purchase.
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
		current.SupplierID = input.SupplierID
		current.Date = defaultTime(input.Date)
		current.Notes = input.Notes
		if err := tx.UpdateHeader(ctx, current); err != nil {
			return err
		}
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		for _, item := range input.Items {
			if err := tx.InsertItem(ctx, Item{PurchaseID: id, ProductID: item.ProductID, Qty: item.Qty, UnitCost: item.UnitCost}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "PURCHASE_UPDATE", id, nil)
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
		cost, err := decimal.NewFromString(item.UnitCost)
		if err != nil {
			return fmt.Errorf("%w: unit cost %q", ErrValidation, item.UnitCost)
		}
		total = total.Add(qty.Mul(cost))
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusPosted, total.String())
	})
	if err != nil {
		return err
	}
	s.invalidateLedger(ctx)
	s.recordAudit(ctx, actorID, "PURCHASE_POST", id, map[string]any{"total": total.String()})
	return nil
}

// Cancel voids a purchase. The record is kept for the ledger.
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
	s.recordAudit(ctx, actorID, "PURCHASE_CANCEL", id, nil)
	return nil
}

// Get returns one purchase with its items.
func (s *Service) Get(ctx context.Context, id int64) (Purchase, []Item, error) {
	return s.repo.Get(ctx, id)
}

// List returns purchases matching the query with their items.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Purchase, map[int64][]Item, error) {
	return s.repo.List(ctx, q)
}

// ListForLedger adapts purchases into the ledger's common record shape.
func (s *Service) ListForLedger(ctx context.Context, q ledger.SourceQuery) ([]ledger.Record, error) {
	listQ := ListQuery{
		DateStart:      q.DateStart,
		DateEnd:        q.DateEnd,
		SupplierSubstr: q.CounterpartySubstr,
		ProductID:      q.ProductID,
	}
	if q.Status != nil {
		status := Status(*q.Status)
		listQ.Status = &status
	}
	purchases, items, err := s.repo.List(ctx, listQ)
	if err != nil {
		return nil, err
	}
	records := make([]ledger.Record, len(purchases))
	for i, p := range purchases {
		rec := ledger.Record{
			ID:           p.ID,
			Reference:    p.Number,
			Date:         p.Date,
			Status:       ledger.Status(p.Status),
			Counterparty: p.SupplierName,
			Notes:        p.Notes,
		}
		for _, item := range items[p.ID] {
			rec.Items = append(rec.Items, ledger.LineItem{ProductID: item.ProductID, Qty: item.Qty, UnitAmount: item.UnitCost})
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
		Entity:   "purchase",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

// validateItems checks every line parses as a positive quantity and a
// non-negative amount before anything touches the database.
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
		cost, err := decimal.NewFromString(item.UnitCost)
		if err != nil || cost.Sign() < 0 {
			return fmt.Errorf("%w: harga %q", ErrValidation, item.UnitCost)
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
