package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Supplier, error)
	List(ctx context.Context, f ListFilters, limit, offset int) ([]Supplier, int, error)
	Insert(ctx context.Context, s Supplier) (int64, error)
	Update(ctx context.Context, s Supplier) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service wraps supplier directory operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the supplier service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Input describes a supplier create or update request.
type Input struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address" validate:"max=255"`
	Village string `json:"village" validate:"max=64"`
	Active  bool   `json:"active"`
}

// Get returns one supplier.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

// List returns suppliers matching the filters with pagination metadata.
// PerPage zero means no explicit paging, used by form dropdowns.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Supplier, shared.Pagination, error) {
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

// Create stores a new supplier.
func (s *Service) Create(ctx context.Context, input Input) (Supplier, error) {
	supplier, err := normalize(input)
	if err != nil {
		return Supplier{}, err
	}
	id, err := s.repo.Insert(ctx, supplier)
	if err != nil {
		return Supplier{}, err
	}
	supplier.ID = id
	return supplier, nil
}

// Update rewrites an existing supplier.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	supplier, err := normalize(input)
	if err != nil {
		return err
	}
	supplier.ID = id
	return s.repo.Update(ctx, supplier)
}

// Deactivate hides a supplier from new transactions without deleting history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate restores a supplier.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}

func normalize(input Input) (Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Supplier{}, fmt.Errorf("%w: nama wajib diisi", ErrValidation)
	}
	return Supplier{
		Name:    name,
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
		Village: strings.TrimSpace(input.Village),
		Active:  input.Active,
	}, nil
}
