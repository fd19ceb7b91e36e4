package suppliers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for suppliers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one supplier by id.
func (r *Repository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(phone, ''), COALESCE(address, ''), COALESCE(village, ''), active, created_at, updated_at
		 FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.Village, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// List returns suppliers matching the filters plus the total row count.
func (r *Repository) List(ctx context.Context, f ListFilters, limit, offset int) ([]Supplier, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	n := 0

	if f.Search != "" {
		n++
		where += ` AND (name ILIKE $` + strconv.Itoa(n) + ` OR village ILIKE $` + strconv.Itoa(n) + `)`
		args = append(args, "%"+f.Search+"%")
	}
	if f.ActiveOnly {
		where += ` AND active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT id, name, COALESCE(phone, ''), COALESCE(address, ''), COALESCE(village, ''), active, created_at, updated_at
	        FROM suppliers` + where + ` ORDER BY name ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.Village, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Insert stores a new supplier and returns its id.
func (r *Repository) Insert(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, phone, address, village, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		s.Name, s.Phone, s.Address, s.Village, s.Active).Scan(&id)
	return id, err
}

// Update rewrites a supplier row.
func (r *Repository) Update(ctx context.Context, s Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $2, phone = $3, address = $4, village = $5, active = $6, updated_at = NOW()
		 WHERE id = $1`,
		s.ID, s.Name, s.Phone, s.Address, s.Village, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
