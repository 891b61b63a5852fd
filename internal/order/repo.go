package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Filter narrows list/count queries. Zero value matches all orders.
type Filter struct {
	Status Status
}

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]Order, error)
	Count(ctx context.Context, f Filter) (int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	MarkPaid(ctx context.Context, id, chargeID, receiptURL string, paidAt time.Time) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create persists the order and its items in one transaction. An order row
// never appears without its item rows.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO orders (id, status, paid, total_amount, total_items, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
  `, o.ID, o.Status, o.Paid, o.TotalAmount, o.TotalItems); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_id, quantity, price)
      VALUES ($1,$2,$3,$4,$5)
    `, it.ID, o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		o      Order
		amount string
	)
	if err := r.db.QueryRow(ctx, `
    SELECT id, status, paid, paid_at, total_amount::text, total_items,
           COALESCE(payment_charge_id,''), created_at, updated_at
    FROM orders WHERE id=$1
  `, id).Scan(&o.ID, &o.Status, &o.Paid, &o.PaidAt, &amount, &o.TotalItems,
		&o.PaymentChargeID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	total, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, nil, err
	}
	o.TotalAmount = total

	items, err := r.itemsByOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

func (r *PGRepo) itemsByOrder(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, product_id, quantity, price::text
    FROM order_items WHERE order_id=$1
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) List(ctx context.Context, f Filter, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
    SELECT id, status, paid, paid_at, total_amount::text, total_items,
           COALESCE(payment_charge_id,''), created_at, updated_at
    FROM orders
    WHERE ($1 = '' OR status = $1)
    ORDER BY created_at DESC LIMIT $2 OFFSET $3
  `, string(f.Status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o      Order
			amount string
		)
		if err := rows.Scan(&o.ID, &o.Status, &o.Paid, &o.PaidAt, &amount, &o.TotalItems,
			&o.PaymentChargeID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if o.TotalAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `
    SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)
  `, string(f.Status)).Scan(&n)
	return n, err
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders
    SET status = $2, updated_at = NOW()
    WHERE id = $1
  `, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid applies the payment confirmation and creates the receipt row in
// one transaction, so a paid order always has its receipt.
func (r *PGRepo) MarkPaid(ctx context.Context, id, chargeID, receiptURL string, paidAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE orders
    SET status = $2, paid = TRUE, paid_at = $3, payment_charge_id = $4, updated_at = NOW()
    WHERE id = $1
  `, id, StatusPaid, paidAt, chargeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO order_receipts (id, order_id, receipt_url, created_at)
    VALUES ($1,$2,$3,NOW())
  `, uuid.NewString(), id, receiptURL); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
