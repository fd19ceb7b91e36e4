package production

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListQuery carries the filters pushed down to SQL.
type ListQuery struct {
	DateStart      *time.Time
	DateEnd        *time.Time
	Status         *Status
	TypeNameSubstr string
	ProductID      *int64
}

// Repository provides PostgreSQL backed persistence for production runs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional write operations.
type TxRepository interface {
	Insert(ctx context.Context, run Run) (int64, error)
	InsertLine(ctx context.Context, line Line) error
	DeleteLines(ctx context.Context, runID int64) error
	UpdateHeader(ctx context.Context, run Run) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (t *txRepo) Insert(ctx context.Context, run Run) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO production_runs (number, type_name, run_date, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		run.Number, run.TypeName, run.Date, run.Status, run.Notes).Scan(&id)
	return id, err
}

func (t *txRepo) InsertLine(ctx context.Context, line Line) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO production_lines (run_id, kind, product_id, qty, unit_cost)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric)`,
		line.RunID, line.Kind, line.ProductID, line.Qty, line.UnitCost)
	return err
}

func (t *txRepo) DeleteLines(ctx context.Context, runID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM production_lines WHERE run_id = $1`, runID)
	return err
}

func (t *txRepo) UpdateHeader(ctx context.Context, run Run) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE production_runs SET type_name = $2, run_date = $3, notes = $4, updated_at = NOW() WHERE id = $1`,
		run.ID, run.TypeName, run.Date, run.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE production_runs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the run header with its lines.
func (r *Repository) Get(ctx context.Context, id int64) (Run, []Line, error) {
	var run Run
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, type_name, run_date, status, COALESCE(notes, ''), created_at, updated_at
		 FROM production_runs WHERE id = $1`, id).
		Scan(&run.ID, &run.Number, &run.TypeName, &run.Date, &run.Status, &run.Notes, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, nil, ErrNotFound
		}
		return Run{}, nil, err
	}

	lines, err := r.linesFor(ctx, []int64{id})
	if err != nil {
		return Run{}, nil, err
	}
	return run, lines[id], nil
}

// List returns run headers matching the query, newest first, lines attached.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Run, map[int64][]Line, error) {
	sql := `SELECT id, number, type_name, run_date, status, COALESCE(notes, ''), created_at, updated_at
	        FROM production_runs
	        WHERE 1=1`
	args := []any{}
	n := 0

	if q.DateStart != nil {
		n++
		sql += ` AND run_date >= $` + strconv.Itoa(n)
		args = append(args, *q.DateStart)
	}
	if q.DateEnd != nil {
		n++
		sql += ` AND run_date <= $` + strconv.Itoa(n)
		args = append(args, *q.DateEnd)
	}
	if q.Status != nil {
		n++
		sql += ` AND status = $` + strconv.Itoa(n)
		args = append(args, *q.Status)
	}
	if q.TypeNameSubstr != "" {
		n++
		sql += ` AND type_name ILIKE $` + strconv.Itoa(n)
		args = append(args, "%"+q.TypeNameSubstr+"%")
	}
	if q.ProductID != nil {
		n++
		sql += ` AND EXISTS (SELECT 1 FROM production_lines pl WHERE pl.run_id = production_runs.id AND pl.product_id = $` + strconv.Itoa(n) + `)`
		args = append(args, *q.ProductID)
	}

	sql += ` ORDER BY run_date DESC, id DESC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var runs []Run
	var ids []int64
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Number, &run.TypeName, &run.Date, &run.Status, &run.Notes, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, nil, err
		}
		runs = append(runs, run)
		ids = append(ids, run.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return runs, lines, nil
}

func (r *Repository) linesFor(ctx context.Context, ids []int64) (map[int64][]Line, error) {
	out := make(map[int64][]Line, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, run_id, kind, product_id, qty::text, unit_cost::text
		 FROM production_lines WHERE run_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.RunID, &line.Kind, &line.ProductID, &line.Qty, &line.UnitCost); err != nil {
			return nil, err
		}
		out[line.RunID] = append(out[line.RunID], line)
	}
	return out, rows.Err()
}
