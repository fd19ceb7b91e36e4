package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Worker, error)
	List(ctx context.Context, f ListFilters, limit, offset int) ([]Worker, int, error)
	Insert(ctx context.Context, w Worker) (int64, error)
	Update(ctx context.Context, w Worker) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service wraps workforce registry operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the worker service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Input describes a worker create or update request.
type Input struct {
	Name      string `json:"name" validate:"required,max=120"`
	Phone     string `json:"phone" validate:"max=32"`
	Role      string `json:"role" validate:"required,oneof=sortir giling jemur gudang umum"`
	DailyWage string `json:"daily_wage" validate:"required"`
	Active    bool   `json:"active"`
}

// Get returns one worker.
func (s *Service) Get(ctx context.Context, id int64) (Worker, error) {
	return s.repo.Get(ctx, id)
}

// List returns workers matching the filters with pagination metadata.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Worker, shared.Pagination, error) {
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 200
	}
	pagination := shared.NewPagination(f.Page, perPage, 0)
	items, total, err := s.repo.List(ctx, f, pagination.PerPage, (pagination.Page-1)*pagination.PerPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(pagination.Page, pagination.PerPage, total), nil
}

// Create stores a new worker.
func (s *Service) Create(ctx context.Context, input Input) (Worker, error) {
	w, err := normalize(input)
	if err != nil {
		return Worker{}, err
	}
	id, err := s.repo.Insert(ctx, w)
	if err != nil {
		return Worker{}, err
	}
	w.ID = id
	return w, nil
}

// Update rewrites an existing worker.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	w, err := normalize(input)
	if err != nil {
		return err
	}
	w.ID = id
	return s.repo.Update(ctx, w)
}

// Deactivate hides a worker from new assignments without deleting history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate restores a worker.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}

func normalize(input Input) (Worker, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Worker{}, fmt.Errorf("%w: nama wajib diisi", ErrValidation)
	}
	wage, err := decimal.NewFromString(input.DailyWage)
	if err != nil || wage.Sign() < 0 {
		return Worker{}, fmt.Errorf("%w: upah harian %q", ErrValidation, input.DailyWage)
	}
	return Worker{
		Name:      name,
		Phone:     strings.TrimSpace(input.Phone),
		Role:      input.Role,
		DailyWage: wage.String(),
		Active:    input.Active,
	}, nil
}
