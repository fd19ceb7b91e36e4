package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for products.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one product by id.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, sku, name, category, unit, active, created_at, updated_at
		 FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// ExistsSKU reports whether another product already uses the SKU.
func (r *Repository) ExistsSKU(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND id <> $2)`, sku, excludeID).Scan(&exists)
	return exists, err
}

// List returns products matching the filters plus the total row count.
func (r *Repository) List(ctx context.Context, f ListFilters, limit, offset int) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	n := 0

	if f.Search != "" {
		n++
		where += ` AND (name ILIKE $` + strconv.Itoa(n) + ` OR sku ILIKE $` + strconv.Itoa(n) + `)`
		args = append(args, "%"+f.Search+"%")
	}
	if f.Category != "" {
		n++
		where += ` AND category = $` + strconv.Itoa(n)
		args = append(args, f.Category)
	}
	if f.ActiveOnly {
		where += ` AND active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT id, sku, name, category, unit, active, created_at, updated_at FROM products` + where +
		` ORDER BY name ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Insert stores a new product and returns its id.
func (r *Repository) Insert(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (sku, name, category, unit, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		p.SKU, p.Name, p.Category, p.Unit, p.Active).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateSKU
	}
	return id, err
}

// Update rewrites a product row.
func (r *Repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET sku = $2, name = $3, category = $4, unit = $5, active = $6, updated_at = NOW()
		 WHERE id = $1`,
		p.ID, p.SKU, p.Name, p.Category, p.Unit, p.Active)
	if isUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports a Postgres unique constraint error (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SetActive flips the active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
