package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads catalog state for reporting jobs. Sync writes go through
// the syncer store; stock mutations go through the inventory repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListBelowMinStock returns products whose stock fell under their minimum.
func (r *Repository) ListBelowMinStock(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price, price_buy, stock, min_stock, updated_at, COALESCE(modified_by, '')
		 FROM products WHERE stock < min_stock ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.PriceBuy, &p.Stock, &p.MinStock, &p.UpdatedAt, &p.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListExpiringBatches returns batches that expire within the given horizon
// and still hold stock, soonest first.
func (r *Repository) ListExpiringBatches(ctx context.Context, days int) ([]ProductBatch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, lot_number, expiration_date, quantity, initial_qty, received_date, updated_at
		 FROM product_batches
		 WHERE quantity > 0 AND expiration_date <= NOW() + ($1 || ' days')::interval
		 ORDER BY expiration_date`,
		days,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductBatch
	for rows.Next() {
		var b ProductBatch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.LotNumber, &b.ExpirationDate, &b.Quantity, &b.InitialQty, &b.ReceivedDate, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
