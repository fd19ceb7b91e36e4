package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for account management.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one account with its role names.
func (r *Repository) Get(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, COALESCE(full_name, ''), active, last_login_at, created_at, updated_at
		 FROM users WHERE id = $1`, id).
		Scan(&a.ID, &a.Username, &a.FullName, &a.Active, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	roles, err := r.rolesFor(ctx, id)
	if err != nil {
		return Account{}, err
	}
	a.Roles = roles
	return a, nil
}

// List returns every account with role names, newest first.
func (r *Repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, COALESCE(full_name, ''), active, last_login_at, created_at, updated_at
		 FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.FullName, &a.Active, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		roles, err := r.rolesFor(ctx, accounts[i].ID)
		if err != nil {
			return nil, err
		}
		accounts[i].Roles = roles
	}
	return accounts, nil
}

// ExistsUsername reports whether another account uses the username.
func (r *Repository) ExistsUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, excludeID).Scan(&exists)
	return exists, err
}

// Insert stores a new account and returns its id.
func (r *Repository) Insert(ctx context.Context, username, passwordHash, fullName string, active bool) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`,
		username, passwordHash, fullName, active).Scan(&id)
	return id, err
}

// UpdateProfile rewrites the mutable account fields.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, fullName string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET full_name = $2, active = $3, updated_at = NOW() WHERE id = $1`, id, fullName, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) rolesFor(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ro.name FROM user_roles ur JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = $1 ORDER BY ro.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}
