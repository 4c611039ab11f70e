package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/inventory"
	"github.com/botica-pos/botica/internal/procurement"
	"github.com/botica-pos/botica/internal/sales"
	"github.com/botica-pos/botica/internal/shared"
)

// PostgresStore implements Store on a pgx pool. Every upsert encodes
// last-write-wins in the ON CONFLICT condition: the update fires only when
// the incoming modification timestamp is strictly newer, so a zero
// RowsAffected means the server row survived.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) exists(ctx context.Context, query, id string) (bool, error) {
	var found bool
	err := s.pool.QueryRow(ctx, query, id).Scan(&found)
	return found, err
}

func (s *PostgresStore) SaleExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, id)
}

func (s *PostgresStore) ProductExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id)
}

func (s *PostgresStore) SupplierExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1)`, id)
}

func (s *PostgresStore) SupplierOrderExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM supplier_orders WHERE id = $1)`, id)
}

func outcomeFromTag(rowsAffected int64) UpsertOutcome {
	if rowsAffected == 0 {
		return OutcomeStale
	}
	return OutcomeApplied
}

func (s *PostgresStore) UpsertSale(ctx context.Context, sl sales.Sale) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sales (id, total, payment_method, payment_status, amount_paid, amount_due, due_date, modified_at, modified_by, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   total = EXCLUDED.total,
		   payment_method = EXCLUDED.payment_method,
		   payment_status = EXCLUDED.payment_status,
		   amount_paid = EXCLUDED.amount_paid,
		   amount_due = EXCLUDED.amount_due,
		   due_date = EXCLUDED.due_date,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE sales.modified_at < EXCLUDED.modified_at`,
		sl.ID, sl.Total, string(sl.PaymentMethod), string(sl.PaymentStatus),
		sl.AmountPaid, sl.AmountDue, sl.DueDate, sl.ModifiedAt, sl.ModifiedBy, sl.IdempotencyKey,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertSaleItem(ctx context.Context, i sales.SaleItem) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   sale_id = EXCLUDED.sale_id,
		   product_id = EXCLUDED.product_id,
		   quantity = EXCLUDED.quantity,
		   unit_price = EXCLUDED.unit_price,
		   subtotal = EXCLUDED.subtotal,
		   modified_at = EXCLUDED.modified_at
		 WHERE sale_items.modified_at < EXCLUDED.modified_at`,
		i.ID, i.SaleID, i.ProductID, i.Quantity, i.UnitPrice, i.Subtotal, i.ModifiedAt,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertExpense(ctx context.Context, e sales.Expense) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, amount, category, note, spent_at, modified_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   amount = EXCLUDED.amount,
		   category = EXCLUDED.category,
		   note = EXCLUDED.note,
		   spent_at = EXCLUDED.spent_at,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE expenses.modified_at < EXCLUDED.modified_at`,
		e.ID, e.Amount, e.Category, e.Note, e.SpentAt, e.ModifiedAt, e.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertProduct(ctx context.Context, p catalog.Product) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO products (id, name, price, price_buy, stock, min_stock, updated_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   price = EXCLUDED.price,
		   price_buy = EXCLUDED.price_buy,
		   stock = EXCLUDED.stock,
		   min_stock = EXCLUDED.min_stock,
		   updated_at = EXCLUDED.updated_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE products.updated_at < EXCLUDED.updated_at`,
		p.ID, p.Name, p.Price, p.PriceBuy, p.Stock, p.MinStock, p.UpdatedAt, p.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertProductBatch(ctx context.Context, b catalog.ProductBatch) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO product_batches (id, product_id, lot_number, expiration_date, quantity, initial_qty, received_date, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   product_id = EXCLUDED.product_id,
		   lot_number = EXCLUDED.lot_number,
		   expiration_date = EXCLUDED.expiration_date,
		   quantity = EXCLUDED.quantity,
		   initial_qty = EXCLUDED.initial_qty,
		   received_date = EXCLUDED.received_date,
		   updated_at = EXCLUDED.updated_at
		 WHERE product_batches.updated_at < EXCLUDED.updated_at`,
		b.ID, b.ProductID, b.LotNumber, b.ExpirationDate, b.Quantity, b.InitialQty, b.ReceivedDate, b.UpdatedAt,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertSupplier(ctx context.Context, sup procurement.Supplier) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO suppliers (id, name, phone, email, modified_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   phone = EXCLUDED.phone,
		   email = EXCLUDED.email,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE suppliers.modified_at < EXCLUDED.modified_at`,
		sup.ID, sup.Name, sup.Phone, sup.Email, sup.ModifiedAt, sup.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertSupplierOrder(ctx context.Context, o procurement.SupplierOrder) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO supplier_orders (id, supplier_id, status, total, ordered_at, modified_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   supplier_id = EXCLUDED.supplier_id,
		   status = EXCLUDED.status,
		   total = EXCLUDED.total,
		   ordered_at = EXCLUDED.ordered_at,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE supplier_orders.modified_at < EXCLUDED.modified_at`,
		o.ID, o.SupplierID, string(o.Status), o.Total, o.OrderedAt, o.ModifiedAt, o.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertSupplierOrderItem(ctx context.Context, i procurement.SupplierOrderItem) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO supplier_order_items (id, order_id, product_id, quantity, unit_cost, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   order_id = EXCLUDED.order_id,
		   product_id = EXCLUDED.product_id,
		   quantity = EXCLUDED.quantity,
		   unit_cost = EXCLUDED.unit_cost,
		   modified_at = EXCLUDED.modified_at
		 WHERE supplier_order_items.modified_at < EXCLUDED.modified_at`,
		i.ID, i.OrderID, i.ProductID, i.Quantity, i.UnitCost, i.ModifiedAt,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertSupplierReturn(ctx context.Context, r procurement.SupplierReturn) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO supplier_returns (id, supplier_id, product_id, batch_id, quantity, reason, returned_at, modified_at, modified_by)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   supplier_id = EXCLUDED.supplier_id,
		   product_id = EXCLUDED.product_id,
		   batch_id = EXCLUDED.batch_id,
		   quantity = EXCLUDED.quantity,
		   reason = EXCLUDED.reason,
		   returned_at = EXCLUDED.returned_at,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE supplier_returns.modified_at < EXCLUDED.modified_at`,
		r.ID, r.SupplierID, r.ProductID, r.BatchID, r.Quantity, r.Reason, r.ReturnedAt, r.ModifiedAt, r.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertProductSupplier(ctx context.Context, p procurement.ProductSupplier) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO product_suppliers (id, product_id, supplier_id, unit_cost, modified_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   product_id = EXCLUDED.product_id,
		   supplier_id = EXCLUDED.supplier_id,
		   unit_cost = EXCLUDED.unit_cost,
		   modified_at = EXCLUDED.modified_at
		 WHERE product_suppliers.modified_at < EXCLUDED.modified_at`,
		p.ID, p.ProductID, p.SupplierID, p.UnitCost, p.ModifiedAt,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertCreditPayment(ctx context.Context, p sales.CreditPayment) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO credit_payments (id, sale_id, amount, paid_at, modified_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   sale_id = EXCLUDED.sale_id,
		   amount = EXCLUDED.amount,
		   paid_at = EXCLUDED.paid_at,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE credit_payments.modified_at < EXCLUDED.modified_at`,
		p.ID, p.SaleID, p.Amount, p.PaidAt, p.ModifiedAt, p.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertStockoutReport(ctx context.Context, r catalog.StockoutReport) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO stockout_reports (id, product_id, quantity, note, reported_at, modified_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   product_id = EXCLUDED.product_id,
		   quantity = EXCLUDED.quantity,
		   note = EXCLUDED.note,
		   reported_at = EXCLUDED.reported_at,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE stockout_reports.modified_at < EXCLUDED.modified_at`,
		r.ID, r.ProductID, r.Quantity, r.Note, r.ReportedAt, r.ModifiedAt, r.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertSalePrescription(ctx context.Context, p sales.SalePrescription) (UpsertOutcome, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sale_prescriptions (id, sale_id, prescriber, patient_name, reference, modified_at, modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   sale_id = EXCLUDED.sale_id,
		   prescriber = EXCLUDED.prescriber,
		   patient_name = EXCLUDED.patient_name,
		   reference = EXCLUDED.reference,
		   modified_at = EXCLUDED.modified_at,
		   modified_by = EXCLUDED.modified_by
		 WHERE sale_prescriptions.modified_at < EXCLUDED.modified_at`,
		p.ID, p.SaleID, p.Prescriber, p.PatientName, p.Reference, p.ModifiedAt, p.ModifiedBy,
	)
	if err != nil {
		return OutcomeStale, err
	}
	return outcomeFromTag(tag.RowsAffected()), nil
}

const sinceFilter = `($1::timestamptz IS NULL OR modified_at > $1)`

func (s *PostgresStore) ListSalesSince(ctx context.Context, since *time.Time) ([]sales.Sale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, total, payment_method, payment_status, amount_paid, amount_due, due_date, modified_at, COALESCE(modified_by, '')
		 FROM sales WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.Sale
	for rows.Next() {
		var sl sales.Sale
		var method, status string
		if err := rows.Scan(&sl.ID, &sl.Total, &method, &status, &sl.AmountPaid, &sl.AmountDue, &sl.DueDate, &sl.ModifiedAt, &sl.ModifiedBy); err != nil {
			return nil, err
		}
		sl.PaymentMethod = sales.PaymentMethod(method)
		sl.PaymentStatus = sales.PaymentStatus(status)
		out = append(out, sl)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSaleItemsForSales(ctx context.Context, saleIDs []string) ([]sales.SaleItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, sale_id, product_id, quantity, unit_price, subtotal, modified_at
		 FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, id`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.SaleItem
	for rows.Next() {
		var i sales.SaleItem
		if err := rows.Scan(&i.ID, &i.SaleID, &i.ProductID, &i.Quantity, &i.UnitPrice, &i.Subtotal, &i.ModifiedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListExpensesSince(ctx context.Context, since *time.Time) ([]sales.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, amount, category, note, spent_at, modified_at, COALESCE(modified_by, '')
		 FROM expenses WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.Expense
	for rows.Next() {
		var e sales.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Category, &e.Note, &e.SpentAt, &e.ModifiedAt, &e.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListMovementsSince filters on created_at: movements are append-only, so
// creation time is their modification time.
func (s *PostgresStore) ListMovementsSince(ctx context.Context, since *time.Time) ([]inventory.Movement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, type, quantity_change, COALESCE(reason, ''), created_at, COALESCE(user_id, '')
		 FROM stock_movements WHERE ($1::timestamptz IS NULL OR created_at > $1) ORDER BY created_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Movement
	for rows.Next() {
		var m inventory.Movement
		var typ string
		if err := rows.Scan(&m.ID, &m.ProductID, &typ, &m.QuantityChange, &m.Reason, &m.CreatedAt, &m.UserID); err != nil {
			return nil, err
		}
		m.Type = inventory.MovementType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListProductsSince(ctx context.Context, since *time.Time) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, price, price_buy, stock, min_stock, updated_at, COALESCE(modified_by, '')
		 FROM products WHERE ($1::timestamptz IS NULL OR updated_at > $1) ORDER BY updated_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.PriceBuy, &p.Stock, &p.MinStock, &p.UpdatedAt, &p.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListProductBatchesSince(ctx context.Context, since *time.Time) ([]catalog.ProductBatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, lot_number, expiration_date, quantity, initial_qty, received_date, updated_at
		 FROM product_batches WHERE ($1::timestamptz IS NULL OR updated_at > $1) ORDER BY updated_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.ProductBatch
	for rows.Next() {
		var b catalog.ProductBatch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.LotNumber, &b.ExpirationDate, &b.Quantity, &b.InitialQty, &b.ReceivedDate, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSuppliersSince(ctx context.Context, since *time.Time) ([]procurement.Supplier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), modified_at, COALESCE(modified_by, '')
		 FROM suppliers WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []procurement.Supplier
	for rows.Next() {
		var sup procurement.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.Email, &sup.ModifiedAt, &sup.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSupplierOrdersSince(ctx context.Context, since *time.Time) ([]procurement.SupplierOrder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, supplier_id, status, total, ordered_at, modified_at, COALESCE(modified_by, '')
		 FROM supplier_orders WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []procurement.SupplierOrder
	for rows.Next() {
		var o procurement.SupplierOrder
		var status string
		if err := rows.Scan(&o.ID, &o.SupplierID, &status, &o.Total, &o.OrderedAt, &o.ModifiedAt, &o.ModifiedBy); err != nil {
			return nil, err
		}
		o.Status = procurement.OrderStatus(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSupplierOrderItemsSince(ctx context.Context, since *time.Time) ([]procurement.SupplierOrderItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, order_id, product_id, quantity, unit_cost, modified_at
		 FROM supplier_order_items WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []procurement.SupplierOrderItem
	for rows.Next() {
		var i procurement.SupplierOrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.Quantity, &i.UnitCost, &i.ModifiedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSupplierReturnsSince(ctx context.Context, since *time.Time) ([]procurement.SupplierReturn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, supplier_id, product_id, COALESCE(batch_id, ''), quantity, COALESCE(reason, ''), returned_at, modified_at, COALESCE(modified_by, '')
		 FROM supplier_returns WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []procurement.SupplierReturn
	for rows.Next() {
		var r procurement.SupplierReturn
		if err := rows.Scan(&r.ID, &r.SupplierID, &r.ProductID, &r.BatchID, &r.Quantity, &r.Reason, &r.ReturnedAt, &r.ModifiedAt, &r.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListProductSuppliersSince(ctx context.Context, since *time.Time) ([]procurement.ProductSupplier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, supplier_id, unit_cost, modified_at
		 FROM product_suppliers WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []procurement.ProductSupplier
	for rows.Next() {
		var p procurement.ProductSupplier
		if err := rows.Scan(&p.ID, &p.ProductID, &p.SupplierID, &p.UnitCost, &p.ModifiedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListCreditPaymentsSince(ctx context.Context, since *time.Time) ([]sales.CreditPayment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, sale_id, amount, paid_at, modified_at, COALESCE(modified_by, '')
		 FROM credit_payments WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.CreditPayment
	for rows.Next() {
		var p sales.CreditPayment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.PaidAt, &p.ModifiedAt, &p.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListStockoutReportsSince(ctx context.Context, since *time.Time) ([]catalog.StockoutReport, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, quantity, COALESCE(note, ''), reported_at, modified_at, COALESCE(modified_by, '')
		 FROM stockout_reports WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.StockoutReport
	for rows.Next() {
		var r catalog.StockoutReport
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Quantity, &r.Note, &r.ReportedAt, &r.ModifiedAt, &r.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSalePrescriptionsSince(ctx context.Context, since *time.Time) ([]sales.SalePrescription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, sale_id, COALESCE(prescriber, ''), COALESCE(patient_name, ''), COALESCE(reference, ''), modified_at, COALESCE(modified_by, '')
		 FROM sale_prescriptions WHERE `+sinceFilter+` ORDER BY modified_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.SalePrescription
	for rows.Next() {
		var p sales.SalePrescription
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Prescriber, &p.PatientName, &p.Reference, &p.ModifiedAt, &p.ModifiedBy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, price, price_buy, stock, min_stock, updated_at, COALESCE(modified_by, '')
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.PriceBuy, &p.Stock, &p.MinStock, &p.UpdatedAt, &p.ModifiedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, shared.ErrNotFound
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) GetSale(ctx context.Context, id string) (sales.Sale, error) {
	var sl sales.Sale
	var method, status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, total, payment_method, payment_status, amount_paid, amount_due, due_date, modified_at, COALESCE(modified_by, '')
		 FROM sales WHERE id = $1`, id,
	).Scan(&sl.ID, &sl.Total, &method, &status, &sl.AmountPaid, &sl.AmountDue, &sl.DueDate, &sl.ModifiedAt, &sl.ModifiedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sales.Sale{}, shared.ErrNotFound
		}
		return sales.Sale{}, err
	}
	sl.PaymentMethod = sales.PaymentMethod(method)
	sl.PaymentStatus = sales.PaymentStatus(status)
	return sl, nil
}

func (s *PostgresStore) GetMovement(ctx context.Context, id string) (inventory.Movement, error) {
	var m inventory.Movement
	var typ string
	err := s.pool.QueryRow(ctx,
		`SELECT id, product_id, type, quantity_change, COALESCE(reason, ''), created_at, COALESCE(user_id, '')
		 FROM stock_movements WHERE id = $1`, id,
	).Scan(&m.ID, &m.ProductID, &typ, &m.QuantityChange, &m.Reason, &m.CreatedAt, &m.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.Movement{}, shared.ErrNotFound
		}
		return inventory.Movement{}, err
	}
	m.Type = inventory.MovementType(typ)
	return m, nil
}

func (s *PostgresStore) GetExpense(ctx context.Context, id string) (sales.Expense, error) {
	var e sales.Expense
	err := s.pool.QueryRow(ctx,
		`SELECT id, amount, category, note, spent_at, modified_at, COALESCE(modified_by, '')
		 FROM expenses WHERE id = $1`, id,
	).Scan(&e.ID, &e.Amount, &e.Category, &e.Note, &e.SpentAt, &e.ModifiedAt, &e.ModifiedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sales.Expense{}, shared.ErrNotFound
		}
		return sales.Expense{}, err
	}
	return e, nil
}

func (s *PostgresStore) ServerTime(ctx context.Context) (time.Time, error) {
	var now time.Time
	err := s.pool.QueryRow(ctx, `SELECT NOW()`).Scan(&now)
	return now.UTC(), err
}
