package rbac

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	perms map[int64][]string
	calls int
}

func (m *mockRepo) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	m.calls++
	return m.perms[userID], nil
}

func (m *mockRepo) Roles(ctx context.Context) ([]Role, error) { return nil, nil }

func (m *mockRepo) RoleByName(ctx context.Context, name string) (Role, error) {
	return Role{}, ErrRoleNotFound
}

func (m *mockRepo) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return nil
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestHasAnyMatchesOnePermission(t *testing.T) {
	repo := &mockRepo{perms: map[int64][]string{7: {"ledger.view", "sales.view"}}}
	svc := NewService(repo, nil)

	ok, err := svc.HasAny(context.Background(), 7, "purchasing.manage", "sales.view")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAny(context.Background(), 7, "users.manage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAllRequiresEveryPermission(t *testing.T) {
	repo := &mockRepo{perms: map[int64][]string{7: {"ledger.view", "sales.view"}}}
	svc := NewService(repo, nil)

	ok, err := svc.HasAll(context.Background(), 7, "ledger.view", "sales.view")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAll(context.Background(), 7, "ledger.view", "users.manage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermissionsAreCachedUntilInvalidated(t *testing.T) {
	repo := &mockRepo{perms: map[int64][]string{7: {"ledger.view"}}}
	svc := NewService(repo, testRedis(t))

	_, err := svc.PermissionsForUser(context.Background(), 7)
	require.NoError(t, err)
	_, err = svc.PermissionsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	svc.InvalidateUser(context.Background(), 7)
	_, err = svc.PermissionsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
