package purchasing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListQuery carries the filters pushed down to SQL by the ledger and the
// purchasing list screen.
type ListQuery struct {
	DateStart      *time.Time
	DateEnd        *time.Time
	Status         *Status
	SupplierSubstr string
	ProductID      *int64
}

// Repository provides PostgreSQL backed persistence for purchases.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional write operations.
type TxRepository interface {
	Insert(ctx context.Context, p Purchase) (int64, error)
	InsertItem(ctx context.Context, item Item) error
	DeleteItems(ctx context.Context, purchaseID int64) error
	UpdateHeader(ctx context.Context, p Purchase) error
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

func (t *txRepo) Insert(ctx context.Context, p Purchase) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO purchases (number, supplier_id, purchase_date, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		p.Number, p.SupplierID, p.Date, p.Status, p.Notes).Scan(&id)
	return id, err
}

func (t *txRepo) InsertItem(ctx context.Context, item Item) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO purchase_items (purchase_id, product_id, qty, unit_cost)
		 VALUES ($1, $2, $3::numeric, $4::numeric)`,
		item.PurchaseID, item.ProductID, item.Qty, item.UnitCost)
	return err
}

func (t *txRepo) DeleteItems(ctx context.Context, purchaseID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, purchaseID)
	return err
}

func (t *txRepo) UpdateHeader(ctx context.Context, p Purchase) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE purchases SET supplier_id = $2, purchase_date = $3, notes = $4, updated_at = NOW() WHERE id = $1`,
		p.ID, p.SupplierID, p.Date, p.Notes)
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
		`UPDATE purchases SET status = $2, total = NULLIF($3, '')::numeric, updated_at = NOW() WHERE id = $1`,
		id, status, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the purchase header with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Purchase, []Item, error) {
	var p Purchase
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.number, p.supplier_id, COALESCE(s.name, ''), p.purchase_date, p.status,
		        COALESCE(p.notes, ''), COALESCE(p.total::text, ''), p.created_at, p.updated_at
		 FROM purchases p
		 LEFT JOIN suppliers s ON s.id = p.supplier_id
		 WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Number, &p.SupplierID, &p.SupplierName, &p.Date, &p.Status,
			&p.Notes, &p.Total, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, nil, ErrNotFound
		}
		return Purchase{}, nil, err
	}

	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return Purchase{}, nil, err
	}
	return p, items[id], nil
}

// List returns purchase headers matching the query, newest first, with items
// attached. The ledger consumes this unpaged; the list screen pages in memory
// through shared.Pagination.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Purchase, map[int64][]Item, error) {
	sql := `SELECT p.id, p.number, p.supplier_id, COALESCE(s.name, ''), p.purchase_date, p.status,
	               COALESCE(p.notes, ''), COALESCE(p.total::text, ''), p.created_at, p.updated_at
	        FROM purchases p
	        LEFT JOIN suppliers s ON s.id = p.supplier_id
	        WHERE 1=1`
	args := []any{}
	n := 0

	if q.DateStart != nil {
		n++
		sql += ` AND p.purchase_date >= $` + strconv.Itoa(n)
		args = append(args, *q.DateStart)
	}
	if q.DateEnd != nil {
		n++
		sql += ` AND p.purchase_date <= $` + strconv.Itoa(n)
		args = append(args, *q.DateEnd)
	}
	if q.Status != nil {
		n++
		sql += ` AND p.status = $` + strconv.Itoa(n)
		args = append(args, *q.Status)
	}
	if q.SupplierSubstr != "" {
		n++
		sql += ` AND s.name ILIKE $` + strconv.Itoa(n)
		args = append(args, "%"+q.SupplierSubstr+"%")
	}
	if q.ProductID != nil {
		n++
		sql += ` AND EXISTS (SELECT 1 FROM purchase_items pi WHERE pi.purchase_id = p.id AND pi.product_id = $` + strconv.Itoa(n) + `)`
		args = append(args, *q.ProductID)
	}

	sql += ` ORDER BY p.purchase_date DESC, p.id DESC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var purchases []Purchase
	var ids []int64
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.Number, &p.SupplierID, &p.SupplierName, &p.Date, &p.Status,
			&p.Notes, &p.Total, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, nil, err
		}
		purchases = append(purchases, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return purchases, items, nil
}

// itemsFor loads line items for the given purchase IDs, decimals as text.
func (r *Repository) itemsFor(ctx context.Context, ids []int64) (map[int64][]Item, error) {
	out := make(map[int64][]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, purchase_id, product_id, qty::text, unit_cost::text
		 FROM purchase_items WHERE purchase_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.Qty, &item.UnitCost); err != nil {
			return nil, err
		}
		out[item.PurchaseID] = append(out[item.PurchaseID], item)
	}
	return out, rows.Err()
}
