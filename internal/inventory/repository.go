package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/platform/db"
	"github.com/botica-pos/botica/internal/shared"
)

// Repository persists stock state in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *txRepo) MovementExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// GetProductForUpdate locks the product row until the transaction ends,
// serializing concurrent stock writers on the same product.
func (r *txRepo) GetProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	var p catalog.Product
	err := r.tx.QueryRow(ctx,
		`SELECT id, name, price, price_buy, stock, min_stock, updated_at, COALESCE(modified_by, '')
		 FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.PriceBuy, &p.Stock, &p.MinStock, &p.UpdatedAt, &p.ModifiedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, shared.ErrNotFound
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func (r *txRepo) ListBatchesForUpdate(ctx context.Context, productID string) ([]catalog.ProductBatch, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT id, product_id, lot_number, expiration_date, quantity, initial_qty, received_date, updated_at
		 FROM product_batches
		 WHERE product_id = $1 AND quantity > 0
		 ORDER BY expiration_date, received_date, id
		 FOR UPDATE`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []catalog.ProductBatch
	for rows.Next() {
		var b catalog.ProductBatch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.LotNumber, &b.ExpirationDate, &b.Quantity, &b.InitialQty, &b.ReceivedDate, &b.UpdatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *txRepo) DecrementBatch(ctx context.Context, batchID string, qty int64) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE product_batches SET quantity = quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND quantity >= $2`,
		batchID, qty,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory: batch %s cannot cover %d units", batchID, qty)
	}
	return nil
}

func (r *txRepo) UpdateProductStock(ctx context.Context, productID string, stock int64, at time.Time) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`,
		productID, stock, at,
	)
	return err
}

func (r *txRepo) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO stock_movements (id, product_id, type, quantity_change, reason, created_at, user_id, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`,
		m.ID, m.ProductID, string(m.Type), m.QuantityChange, m.Reason, m.CreatedAt, m.UserID, m.IdempotencyKey,
	)
	return err
}
