package sales

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
	CustomerSubstr string
	ProductID      *int64
}

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional write operations.
type TxRepository interface {
	Insert(ctx context.Context, s Sale) (int64, error)
	InsertItem(ctx context.Context, item Item) error
	DeleteItems(ctx context.Context, saleID int64) error
	UpdateHeader(ctx context.Context, s Sale) error
	UpdateStatus(ctx context.Context, id int64, status Status, total string) error
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

func (t *txRepo) Insert(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (number, customer_id, sale_date, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		s.Number, s.CustomerID, s.Date, s.Status, s.Notes).Scan(&id)
	return id, err
}

func (t *txRepo) InsertItem(ctx context.Context, item Item) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO sale_items (sale_id, product_id, qty, unit_price)
		 VALUES ($1, $2, $3::numeric, $4::numeric)`,
		item.SaleID, item.ProductID, item.Qty, item.UnitPrice)
	return err
}

func (t *txRepo) DeleteItems(ctx context.Context, saleID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
	return err
}

func (t *txRepo) UpdateHeader(ctx context.Context, s Sale) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE sales SET customer_id = $2, sale_date = $3, notes = $4, updated_at = NOW() WHERE id = $1`,
		s.ID, s.CustomerID, s.Date, s.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status Status, total string) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE sales SET status = $2, total = NULLIF($3, '')::numeric, updated_at = NOW() WHERE id = $1`,
		id, status, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the sale header with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, []Item, error) {
	var s Sale
	err := r.pool.QueryRow(ctx,
		`SELECT sl.id, sl.number, sl.customer_id, COALESCE(c.name, ''), sl.sale_date, sl.status,
		        COALESCE(sl.notes, ''), COALESCE(sl.total::text, ''), sl.created_at, sl.updated_at
		 FROM sales sl
		 LEFT JOIN customers c ON c.id = sl.customer_id
		 WHERE sl.id = $1`, id).
		Scan(&s.ID, &s.Number, &s.CustomerID, &s.CustomerName, &s.Date, &s.Status,
			&s.Notes, &s.Total, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, nil, ErrNotFound
		}
		return Sale{}, nil, err
	}

	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return Sale{}, nil, err
	}
	return s, items[id], nil
}

// List returns sale headers matching the query, newest first, items attached.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Sale, map[int64][]Item, error) {
	sql := `SELECT sl.id, sl.number, sl.customer_id, COALESCE(c.name, ''), sl.sale_date, sl.status,
	               COALESCE(sl.notes, ''), COALESCE(sl.total::text, ''), sl.created_at, sl.updated_at
	        FROM sales sl
	        LEFT JOIN customers c ON c.id = sl.customer_id
	        WHERE 1=1`
	args := []any{}
	n := 0

	if q.DateStart != nil {
		n++
		sql += ` AND sl.sale_date >= $` + strconv.Itoa(n)
		args = append(args, *q.DateStart)
	}
	if q.DateEnd != nil {
		n++
		sql += ` AND sl.sale_date <= $` + strconv.Itoa(n)
		args = append(args, *q.DateEnd)
	}
	if q.Status != nil {
		n++
		sql += ` AND sl.status = $` + strconv.Itoa(n)
		args = append(args, *q.Status)
	}
	if q.CustomerSubstr != "" {
		n++
		sql += ` AND c.name ILIKE $` + strconv.Itoa(n)
		args = append(args, "%"+q.CustomerSubstr+"%")
	}
	if q.ProductID != nil {
		n++
		sql += ` AND EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = sl.id AND si.product_id = $` + strconv.Itoa(n) + `)`
		args = append(args, *q.ProductID)
	}

	sql += ` ORDER BY sl.sale_date DESC, sl.id DESC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var sales []Sale
	var ids []int64
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.Number, &s.CustomerID, &s.CustomerName, &s.Date, &s.Status,
			&s.Notes, &s.Total, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, nil, err
		}
		sales = append(sales, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return sales, items, nil
}

func (r *Repository) itemsFor(ctx context.Context, ids []int64) (map[int64][]Item, error) {
	out := make(map[int64][]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_id, product_id, qty::text, unit_price::text
		 FROM sale_items WHERE sale_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Qty, &item.UnitPrice); err != nil {
			return nil, err
		}
		out[item.SaleID] = append(out[item.SaleID], item)
	}
	return out, rows.Err()
}
