package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const returnCols = `id, order_id, user_id, status, reason, total_refund, created_at, updated_at`

const returnItemCols = `id, return_id, order_item_id, product_id, variant_id, title, qty, unit_price, reason`

// CreateReturnTx inserts a return request header inside tx.
func (s *Store) CreateReturnTx(ctx context.Context, tx pgx.Tx, r ReturnRequest) (ReturnRequest, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO return_requests (order_id, user_id, status, reason, total_refund)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+returnCols,
		r.OrderID, r.UserID, r.Status, r.Reason, r.TotalRefund,
	).Scan(&r.ID, &r.OrderID, &r.UserID, &r.Status, &r.Reason, &r.TotalRefund, &r.CreatedAt, &r.UpdatedAt)
	return r, mapErr(err)
}

// CreateReturnItemTx inserts one return line inside tx.
func (s *Store) CreateReturnItemTx(ctx context.Context, tx pgx.Tx, it ReturnItem) (ReturnItem, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO return_items (return_id, order_item_id, product_id, variant_id, title, qty, unit_price, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+returnItemCols,
		it.ReturnID, it.OrderItemID, it.ProductID, it.VariantID, it.Title, it.Qty, it.UnitPrice, it.Reason,
	).Scan(&it.ID, &it.ReturnID, &it.OrderItemID, &it.ProductID, &it.VariantID, &it.Title, &it.Qty, &it.UnitPrice, &it.Reason)
	return it, mapErr(err)
}

// DeleteReturnItemsTx clears all lines on a return request inside tx.
func (s *Store) DeleteReturnItemsTx(ctx context.Context, tx pgx.Tx, returnID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM return_items WHERE return_id = $1`, returnID)
	return err
}

// SetReturnRefundTx updates the computed refund and reason inside tx.
func (s *Store) SetReturnRefundTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, totalRefund int64, reason *string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE return_requests SET total_refund = $2, reason = $3, updated_at = now()
		WHERE id = $1`, id, totalRefund, reason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReturn loads a return request header.
func (s *Store) GetReturn(ctx context.Context, id uuid.UUID) (ReturnRequest, error) {
	var r ReturnRequest
	err := s.Pool.QueryRow(ctx, `SELECT `+returnCols+` FROM return_requests WHERE id = $1`, id).
		Scan(&r.ID, &r.OrderID, &r.UserID, &r.Status, &r.Reason, &r.TotalRefund, &r.CreatedAt, &r.UpdatedAt)
	return r, mapErr(err)
}

// GetReturnTx loads a return request header inside tx with a row lock.
func (s *Store) GetReturnTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (ReturnRequest, error) {
	var r ReturnRequest
	err := tx.QueryRow(ctx, `SELECT `+returnCols+` FROM return_requests WHERE id = $1 FOR UPDATE`, id).
		Scan(&r.ID, &r.OrderID, &r.UserID, &r.Status, &r.Reason, &r.TotalRefund, &r.CreatedAt, &r.UpdatedAt)
	return r, mapErr(err)
}

// ListReturnItems returns the lines of a return request.
func (s *Store) ListReturnItems(ctx context.Context, returnID uuid.UUID) ([]ReturnItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+returnItemCols+` FROM return_items WHERE return_id = $1 ORDER BY created_at`, returnID,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (ReturnItem, error) {
		var it ReturnItem
		err := r.Scan(&it.ID, &it.ReturnID, &it.OrderItemID, &it.ProductID, &it.VariantID, &it.Title, &it.Qty, &it.UnitPrice, &it.Reason)
		return it, err
	})
}

// SumReturnedQtyByOrderItem aggregates already-requested return quantities per
// order line across all non-cancelled returns on the order.
func (s *Store) SumReturnedQtyByOrderItem(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int32, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT ri.order_item_id, coalesce(sum(ri.qty), 0)
		FROM return_items ri
		JOIN return_requests rr ON rr.id = ri.return_id
		WHERE rr.order_id = $1 AND rr.status <> $2
		GROUP BY ri.order_item_id`, orderID, ReturnCancelled,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]int32)
	for rows.Next() {
		var id uuid.UUID
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		out[id] = int32(qty)
	}
	return out, rows.Err()
}

// ReturnFilter restricts return request listings.
type ReturnFilter struct {
	Status string
	UserID *uuid.UUID
	Limit  int32
	Offset int32
}

// CountReturns counts return requests matching the filter.
func (s *Store) CountReturns(ctx context.Context, f ReturnFilter) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FROM return_requests
		WHERE ($1 = '' OR status = $1) AND ($2::uuid IS NULL OR user_id = $2)`,
		f.Status, f.UserID,
	).Scan(&total)
	return total, err
}

// ListReturns returns return requests matching the filter newest first.
func (s *Store) ListReturns(ctx context.Context, f ReturnFilter) ([]ReturnRequest, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+returnCols+` FROM return_requests
		WHERE ($1 = '' OR status = $1) AND ($2::uuid IS NULL OR user_id = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.Status, f.UserID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (ReturnRequest, error) {
		var rr ReturnRequest
		err := r.Scan(&rr.ID, &rr.OrderID, &rr.UserID, &rr.Status, &rr.Reason, &rr.TotalRefund, &rr.CreatedAt, &rr.UpdatedAt)
		return rr, err
	})
}

// SetReturnStatusTx moves a return request to a new status inside tx.
func (s *Store) SetReturnStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) (ReturnRequest, error) {
	var r ReturnRequest
	err := tx.QueryRow(ctx, `
		UPDATE return_requests SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+returnCols, id, status,
	).Scan(&r.ID, &r.OrderID, &r.UserID, &r.Status, &r.Reason, &r.TotalRefund, &r.CreatedAt, &r.UpdatedAt)
	return r, mapErr(err)
}

// RestockReturnItemsTx puts the returned quantities back on their variants.
func (s *Store) RestockReturnItemsTx(ctx context.Context, tx pgx.Tx, returnID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE product_variants pv
		SET stock = pv.stock + ri.qty
		FROM return_items ri
		WHERE ri.return_id = $1 AND ri.variant_id = pv.id`, returnID,
	)
	return err
}
