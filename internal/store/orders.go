package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderCols = `id, user_id, status, payment_status, currency, subtotal, discount, tax, shipping, total, applied_voucher_code, shipping_address, notes, created_at`

const orderItemCols = `id, order_id, product_id, variant_id, title, slug, qty, unit_price, qty * unit_price AS subtotal`

// CreateOrderTx inserts an order header inside tx and returns the stored row.
func (s *Store) CreateOrderTx(ctx context.Context, tx pgx.Tx, o Order) (Order, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, payment_status, currency, subtotal, discount, tax, shipping, total, applied_voucher_code, shipping_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+orderCols,
		o.UserID, o.Status, o.PaymentStatus, o.Currency, o.Subtotal, o.Discount, o.Tax, o.Shipping, o.Total, o.AppliedVoucherCode, o.ShippingAddress, o.Notes,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Currency, &o.Subtotal, &o.Discount, &o.Tax, &o.Shipping, &o.Total, &o.AppliedVoucherCode, &o.ShippingAddress, &o.Notes, &o.CreatedAt)
	return o, mapErr(err)
}

// CreateOrderItemTx inserts one frozen order line inside tx.
func (s *Store) CreateOrderItemTx(ctx context.Context, tx pgx.Tx, it OrderItem) (OrderItem, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, variant_id, title, slug, qty, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderItemCols,
		it.OrderID, it.ProductID, it.VariantID, it.Title, it.Slug, it.Qty, it.UnitPrice,
	).Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Title, &it.Slug, &it.Qty, &it.UnitPrice, &it.Subtotal)
	return it, mapErr(err)
}

// DecrementStockTx reserves stock for a variant inside tx, failing when the
// remaining stock is insufficient.
func (s *Store) DecrementStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int32) error {
	tag, err := tx.Exec(ctx, `
		UPDATE product_variants SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`, variantID, qty,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// GetOrder loads an order header.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	var o Order
	err := s.Pool.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Currency, &o.Subtotal, &o.Discount, &o.Tax, &o.Shipping, &o.Total, &o.AppliedVoucherCode, &o.ShippingAddress, &o.Notes, &o.CreatedAt)
	return o, mapErr(err)
}

// ListOrderItems returns the frozen lines of an order.
func (s *Store) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+orderItemCols+` FROM order_items WHERE order_id = $1 ORDER BY created_at`, orderID,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrderItem)
}

// CountOrdersByUser counts a customer's orders.
func (s *Store) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}

// ListOrdersByUser returns a customer's orders newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]Order, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+orderCols+` FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

// OrderFilter restricts admin order listings.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	Limit         int32
	Offset        int32
}

// CountOrders counts orders matching the filter.
func (s *Store) CountOrders(ctx context.Context, f OrderFilter) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FROM orders
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR payment_status = $2)`,
		f.Status, f.PaymentStatus,
	).Scan(&total)
	return total, err
}

// ListOrders returns orders matching the filter newest first.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR payment_status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.Status, f.PaymentStatus, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

// SetOrderStatus updates the fulfilment status.
func (s *Store) SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (Order, error) {
	var o Order
	err := s.Pool.QueryRow(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1 RETURNING `+orderCols, id, status,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Currency, &o.Subtotal, &o.Discount, &o.Tax, &o.Shipping, &o.Total, &o.AppliedVoucherCode, &o.ShippingAddress, &o.Notes, &o.CreatedAt)
	return o, mapErr(err)
}

// SetPaymentStatus updates the payment status.
func (s *Store) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (Order, error) {
	var o Order
	err := s.Pool.QueryRow(ctx, `
		UPDATE orders SET payment_status = $2 WHERE id = $1 RETURNING `+orderCols, id, status,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Currency, &o.Subtotal, &o.Discount, &o.Tax, &o.Shipping, &o.Total, &o.AppliedVoucherCode, &o.ShippingAddress, &o.Notes, &o.CreatedAt)
	return o, mapErr(err)
}

// SetPaymentStatusTx updates the payment status inside tx.
func (s *Store) SetPaymentStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET payment_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(r pgx.Rows) (Order, error) {
	var o Order
	err := r.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Currency, &o.Subtotal, &o.Discount, &o.Tax, &o.Shipping, &o.Total, &o.AppliedVoucherCode, &o.ShippingAddress, &o.Notes, &o.CreatedAt)
	return o, err
}

func scanOrderItem(r pgx.Rows) (OrderItem, error) {
	var it OrderItem
	err := r.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Title, &it.Slug, &it.Qty, &it.UnitPrice, &it.Subtotal)
	return it, err
}
