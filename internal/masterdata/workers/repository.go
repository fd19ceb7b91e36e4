package workers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for workers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one worker by id.
func (r *Repository) Get(ctx context.Context, id int64) (Worker, error) {
	var w Worker
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(phone, ''), role, COALESCE(daily_wage::text, '0'), active, created_at, updated_at
		 FROM workers WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.Phone, &w.Role, &w.DailyWage, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, ErrNotFound
	}
	return w, err
}

// List returns workers matching the filters plus the total row count.
func (r *Repository) List(ctx context.Context, f ListFilters, limit, offset int) ([]Worker, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	n := 0

	if f.Search != "" {
		n++
		where += ` AND name ILIKE $` + strconv.Itoa(n)
		args = append(args, "%"+f.Search+"%")
	}
	if f.Role != "" {
		n++
		where += ` AND role = $` + strconv.Itoa(n)
		args = append(args, f.Role)
	}
	if f.ActiveOnly {
		where += ` AND active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT id, name, COALESCE(phone, ''), role, COALESCE(daily_wage::text, '0'), active, created_at, updated_at
	        FROM workers` + where + ` ORDER BY name ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Worker
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Phone, &w.Role, &w.DailyWage, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, w)
	}
	return out, total, rows.Err()
}

// Insert stores a new worker and returns its id.
func (r *Repository) Insert(ctx context.Context, w Worker) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO workers (name, phone, role, daily_wage, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4::numeric, $5, NOW(), NOW()) RETURNING id`,
		w.Name, w.Phone, w.Role, w.DailyWage, w.Active).Scan(&id)
	return id, err
}

// Update rewrites a worker row.
func (r *Repository) Update(ctx context.Context, w Worker) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workers SET name = $2, phone = $3, role = $4, daily_wage = $5::numeric, active = $6, updated_at = NOW()
		 WHERE id = $1`,
		w.ID, w.Name, w.Phone, w.Role, w.DailyWage, w.Active)
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
		`UPDATE workers SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
