package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	users   map[string]User
	touched []int64
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (User, error) {
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (m *mockRepo) TouchLastLogin(ctx context.Context, id int64) error {
	m.touched = append(m.touched, id)
	return nil
}

func repoWithUser(t *testing.T, username, password string, active bool) *mockRepo {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &mockRepo{users: map[string]User{
		username: {ID: 1, Username: username, PasswordHash: hash, FullName: "Siti", Active: active},
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := repoWithUser(t, "siti", "rahasia123", true)
	svc := NewService(repo, nil)

	user, err := svc.Authenticate(context.Background(), "siti", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, []int64{1}, repo.touched)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(repoWithUser(t, "siti", "rahasia123", true), nil)

	_, err := svc.Authenticate(context.Background(), "siti", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewService(&mockRepo{users: map[string]User{}}, nil)

	_, err := svc.Authenticate(context.Background(), "hantu", "apapun")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc := NewService(repoWithUser(t, "siti", "rahasia123", false), nil)

	_, err := svc.Authenticate(context.Background(), "siti", "rahasia123")
	assert.ErrorIs(t, err, ErrUserInactive)
}
