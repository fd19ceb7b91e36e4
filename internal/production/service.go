package production

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
	Get(ctx context.Context, id int64) (Run, []Line, error)
	List(ctx context.Context, q ListQuery) ([]Run, map[int64][]Line, error)
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the production run lifecycle.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	cache *ledger.SummaryCache
}

// NewService constructs the production service. Audit and cache may be nil.
func NewService(repo RepositoryPort, audit AuditPort, cache *ledger.SummaryCache) *Service {
	return &Service{repo: repo, audit: audit, cache: cache}
}

// LineInput is one requested material line. Amounts arrive as decimal strings.
type LineInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Qty       string `json:"qty" validate:"required"`
	UnitCost  string `json:"unit_cost" validate:"required"`
}

// CreateInput describes a new draft production run.
type CreateInput struct {
	TypeName string      `json:"type_name" validate:"required"`
	Date     time.Time   `json:"date" validate:"required"`
	Notes    string      `json:"notes"`
	Inputs   []LineInput `json:"inputs" validate:"required,min=1,dive"`
	Outputs  []LineInput `json:"outputs" validate:"required,min=1,dive"`
}

// UpdateInput mirrors CreateInput for draft edits.
type UpdateInput struct {
	TypeName string      `json:"type_name" validate:"required"`
	Date     time.Time   `json:"date" validate:"required"`
	Notes    string      `json:"notes"`
	Inputs   []LineInput `json:"inputs" validate:"required,min=1,dive"`
	Outputs  []LineInput `json:"outputs" validate:"required,min=1,dive"`
}

// Create persists a draft run with its input and output lines.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (Run, error) {
	if err := validateLines(input.Inputs, input.Outputs); err != nil {
		return Run{}, err
	}
	run := Run{
		Number:   generateNumber("PR", input.Date),
		TypeName: input.TypeName,
		Date:     defaultTime(input.Date),
		Status:   StatusDraft,
		Notes:    input.Notes,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Insert(ctx, run)
		if err != nil {
			return err
		}
		run.ID = id
		return insertLines(ctx, tx, id, input.Inputs, input.Outputs)
	})
	if err != nil {
		return Run{}, err
	}
	s.recordAudit(ctx, actorID, "PRODUCTION_CREATE", run.ID, map[string]any{"number": run.Number})
	return run, nil
}

// Update replaces the header and lines of a draft run.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, actorID int64) error {
	current, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != StatusDraft {
		return ErrInvalidState
	}
	if err := validateLines(input.Inputs, input.Outputs); err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current.TypeName = input.TypeName
		current.Date = defaultTime(input.Date)
		current.Notes = input.Notes
		if err := tx.UpdateHeader(ctx, current); err != nil {
			return err
		}
		if err := tx.DeleteLines(ctx, id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, input.Inputs, input.Outputs)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "PRODUCTION_UPDATE", id, nil)
	return nil
}

// Post marks a draft run as executed. Runs carry no transaction total; the
// ledger values them from their input lines.
func (s *Service) Post(ctx context.Context, id int64, actorID int64) error {
	current, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != StatusDraft {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusPosted)
	})
	if err != nil {
		return err
	}
	s.invalidateLedger(ctx)
	s.recordAudit(ctx, actorID, "PRODUCTION_POST", id, nil)
	return nil
}

// Cancel voids a run. The record is kept for the ledger.
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64) error {
	current, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusCancelled {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusCancelled)
	})
	if err != nil {
		return err
	}
	s.invalidateLedger(ctx)
	s.recordAudit(ctx, actorID, "PRODUCTION_CANCEL", id, nil)
	return nil
}

// Get returns one run with its lines.
func (s *Service) Get(ctx context.Context, id int64) (Run, []Line, error) {
	return s.repo.Get(ctx, id)
}

// List returns runs matching the query with their lines.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Run, map[int64][]Line, error) {
	return s.repo.List(ctx, q)
}

// ListForLedger adapts runs into the ledger's production record shape.
func (s *Service) ListForLedger(ctx context.Context, q ledger.SourceQuery) ([]ledger.ProductionRecord, error) {
	listQ := ListQuery{
		DateStart:      q.DateStart,
		DateEnd:        q.DateEnd,
		TypeNameSubstr: q.CounterpartySubstr,
		ProductID:      q.ProductID,
	}
	if q.Status != nil {
		status := Status(*q.Status)
		listQ.Status = &status
	}
	runs, lines, err := s.repo.List(ctx, listQ)
	if err != nil {
		return nil, err
	}
	records := make([]ledger.ProductionRecord, len(runs))
	for i, run := range runs {
		rec := ledger.ProductionRecord{
			ID:        run.ID,
			Reference: run.Number,
			Date:      run.Date,
			Status:    ledger.Status(run.Status),
			TypeName:  run.TypeName,
			Notes:     run.Notes,
		}
		for _, line := range lines[run.ID] {
			item := ledger.LineItem{ProductID: line.ProductID, Qty: line.Qty, UnitAmount: line.UnitCost}
			if line.Kind == KindOutput {
				rec.Outputs = append(rec.Outputs, item)
			} else {
				rec.Inputs = append(rec.Inputs, item)
			}
		}
		records[i] = rec
	}
	return records, nil
}

func insertLines(ctx context.Context, tx TxRepository, runID int64, inputs, outputs []LineInput) error {
	for _, in := range inputs {
		if err := tx.InsertLine(ctx, Line{RunID: runID, Kind: KindInput, ProductID: in.ProductID, Qty: in.Qty, UnitCost: in.UnitCost}); err != nil {
			return err
		}
	}
	for _, out := range outputs {
		if err := tx.InsertLine(ctx, Line{RunID: runID, Kind: KindOutput, ProductID: out.ProductID, Qty: out.Qty, UnitCost: out.UnitCost}); err != nil {
			return err
		}
	}
	return nil
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
		Entity:   "production_run",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

func validateLines(inputs, outputs []LineInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: minimal 1 bahan masuk", ErrValidation)
	}
	if len(outputs) == 0 {
		return fmt.Errorf("%w: minimal 1 hasil produksi", ErrValidation)
	}
	for _, line := range append(append([]LineInput{}, inputs...), outputs...) {
		if line.ProductID <= 0 {
			return fmt.Errorf("%w: produk wajib dipilih", ErrValidation)
		}
		qty, err := decimal.NewFromString(line.Qty)
		if err != nil || qty.Sign() <= 0 {
			return fmt.Errorf("%w: jumlah %q", ErrValidation, line.Qty)
		}
		cost, err := decimal.NewFromString(line.UnitCost)
		if err != nil || cost.Sign() < 0 {
			return fmt.Errorf("%w: biaya %q", ErrValidation, line.UnitCost)
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
