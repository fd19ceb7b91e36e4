package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Product, error)
	ExistsSKU(ctx context.Context, sku string, excludeID int64) (bool, error)
	List(ctx context.Context, f ListFilters, limit, offset int) ([]Product, int, error)
	Insert(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, p Product) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service wraps product catalog operations with validation.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the product service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Input describes a product create or update request.
type Input struct {
	SKU      string `json:"sku" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"required,oneof=bahan_baku setengah_jadi jadi"`
	Unit     string `json:"unit" validate:"required,max=16"`
	Active   bool   `json:"active"`
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns products matching the filters with pagination metadata.
// PerPage zero means no explicit paging, used by form dropdowns.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Product, shared.Pagination, error) {
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

// Create stores a new product after checking SKU uniqueness.
func (s *Service) Create(ctx context.Context, input Input) (Product, error) {
	p, err := s.normalize(ctx, input, 0)
	if err != nil {
		return Product{}, err
	}
	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

// Update rewrites an existing product.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	p, err := s.normalize(ctx, input, id)
	if err != nil {
		return err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

// Deactivate hides a product from new transactions without deleting history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate restores a product.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}

func (s *Service) normalize(ctx context.Context, input Input, excludeID int64) (Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" {
		return Product{}, fmt.Errorf("%w: sku dan nama wajib diisi", ErrValidation)
	}
	taken, err := s.repo.ExistsSKU(ctx, sku, excludeID)
	if err != nil {
		return Product{}, err
	}
	if taken {
		return Product{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
	}
	return Product{
		SKU:      sku,
		Name:     name,
		Category: input.Category,
		Unit:     input.Unit,
		Active:   input.Active,
	}, nil
}
