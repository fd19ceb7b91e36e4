package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context, f ListFilters, limit, offset int) ([]Customer, int, error)
	Insert(ctx context.Context, c Customer) (int64, error)
	Update(ctx context.Context, c Customer) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service wraps customer directory operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the customer service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Input describes a customer create or update request.
type Input struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=255"`
	City    string `json:"city" validate:"max=64"`
	Active  bool   `json:"active"`
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filters with pagination metadata.
// PerPage zero means no explicit paging, used by form dropdowns.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Customer, shared.Pagination, error) {
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

// Create stores a new customer.
func (s *Service) Create(ctx context.Context, input Input) (Customer, error) {
	c, err := normalize(input)
	if err != nil {
		return Customer{}, err
	}
	id, err := s.repo.Insert(ctx, c)
	if err != nil {
		return Customer{}, err
	}
	c.ID = id
	return c, nil
}

// Update rewrites an existing customer.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	c, err := normalize(input)
	if err != nil {
		return err
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

// Deactivate hides a customer from new transactions without deleting history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate restores a customer.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}

func normalize(input Input) (Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Customer{}, fmt.Errorf("%w: nama wajib diisi", ErrValidation)
	}
	return Customer{
		Name:    name,
		Phone:   strings.TrimSpace(input.Phone),
		Email:   strings.TrimSpace(input.Email),
		Address: strings.TrimSpace(input.Address),
		City:    strings.TrimSpace(input.City),
		Active:  input.Active,
	}, nil
}
