package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cassia-erp/cassia-erp/internal/auth"
	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Account, error)
	List(ctx context.Context) ([]Account, error)
	ExistsUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	Insert(ctx context.Context, username, passwordHash, fullName string, active bool) (int64, error)
	UpdateProfile(ctx context.Context, id int64, fullName string, active bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages back-office accounts and their role assignments.
type Service struct {
	repo  RepositoryPort
	rbac  *rbac.Service
	audit AuditPort
}

// NewService constructs the user admin service. Audit may be nil.
func NewService(repo RepositoryPort, rbacService *rbac.Service, audit AuditPort) *Service {
	return &Service{repo: repo, rbac: rbacService, audit: audit}
}

// CreateInput describes a new account request.
type CreateInput struct {
	Username string  `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required,max=120"`
	RoleIDs  []int64 `json:"role_ids"`
}

// UpdateInput describes profile and role changes.
type UpdateInput struct {
	FullName string  `json:"full_name" validate:"required,max=120"`
	Active   bool    `json:"active"`
	RoleIDs  []int64 `json:"role_ids"`
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// Roles exposes the assignable roles for the admin form.
func (s *Service) Roles(ctx context.Context) ([]rbac.Role, error) {
	return s.rbac.Roles(ctx)
}

// Create provisions a new account with its roles.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (Account, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || len(input.Password) < 8 {
		return Account{}, fmt.Errorf("%w: username dan kata sandi minimal 8 karakter wajib diisi", ErrValidation)
	}
	taken, err := s.repo.ExistsUsername(ctx, username, 0)
	if err != nil {
		return Account{}, err
	}
	if taken {
		return Account{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return Account{}, err
	}
	id, err := s.repo.Insert(ctx, username, hash, strings.TrimSpace(input.FullName), true)
	if err != nil {
		return Account{}, err
	}
	if len(input.RoleIDs) > 0 {
		if err := s.rbac.AssignRoles(ctx, id, input.RoleIDs); err != nil {
			return Account{}, err
		}
	}
	s.recordAudit(ctx, actorID, "USER_CREATE", id, map[string]any{"username": username})
	return s.repo.Get(ctx, id)
}

// Update rewrites the profile and role assignment of an account.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, actorID int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateProfile(ctx, id, strings.TrimSpace(input.FullName), input.Active); err != nil {
		return err
	}
	if err := s.rbac.AssignRoles(ctx, id, input.RoleIDs); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "USER_UPDATE", id, nil)
	return nil
}

// ResetPassword replaces an account's password.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string, actorID int64) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: kata sandi minimal 8 karakter", ErrValidation)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "USER_RESET_PASSWORD", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
