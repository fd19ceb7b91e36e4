package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	permCachePrefix = "rbac:perms:"
	permCacheTTL    = 5 * time.Minute
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)
	Roles(ctx context.Context) ([]Role, error)
	RoleByName(ctx context.Context, name string) (Role, error)
	ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
}

// Service resolves and caches user permissions.
type Service struct {
	repo  RepositoryPort
	redis *redis.Client
}

// NewService constructs the rbac service. The Redis client may be nil, in
// which case every check hits the database.
func NewService(repo RepositoryPort, rdb *redis.Client) *Service {
	return &Service{repo: repo, redis: rdb}
}

// PermissionsForUser returns the cached permission set of one user.
func (s *Service) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	key := permCachePrefix + strconv.FormatInt(userID, 10)
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var perms []string
			if err := json.Unmarshal(raw, &perms); err == nil {
				return perms, nil
			}
		}
	}
	perms, err := s.repo.PermissionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: resolve permissions: %w", err)
	}
	if s.redis != nil {
		if raw, err := json.Marshal(perms); err == nil {
			_ = s.redis.Set(ctx, key, raw, permCacheTTL).Err()
		}
	}
	return perms, nil
}

// HasAny reports whether the user holds at least one of the permissions.
func (s *Service) HasAny(ctx context.Context, userID int64, perms ...string) (bool, error) {
	held, err := s.PermissionsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	set := make(map[string]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}
	for _, p := range perms {
		if _, ok := set[p]; ok {
			return true, nil
		}
	}
	return false, nil
}

// HasAll reports whether the user holds every one of the permissions.
func (s *Service) HasAll(ctx context.Context, userID int64, perms ...string) (bool, error) {
	held, err := s.PermissionsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	set := make(map[string]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}
	for _, p := range perms {
		if _, ok := set[p]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// Roles lists every role with its permissions.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.repo.Roles(ctx)
}

// AssignRoles rewrites a user's roles and drops the cached permission set.
func (s *Service) AssignRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if err := s.repo.ReplaceUserRoles(ctx, userID, roleIDs); err != nil {
		return err
	}
	s.InvalidateUser(ctx, userID)
	return nil
}

// InvalidateUser drops the cached permission set of one user.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, permCachePrefix+strconv.FormatInt(userID, 10)).Err()
	}
}
