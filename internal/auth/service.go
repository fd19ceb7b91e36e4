package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service authenticates back-office users.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs the auth service. Audit may be nil.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Authenticate checks credentials and returns the account on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return User{}, ErrUserInactive
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		return User{}, fmt.Errorf("auth: touch last login: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: user.ID,
			Action:  "LOGIN",
			Entity:  "user",
		})
	}
	return user, nil
}

// HashPassword produces a bcrypt hash for account provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
