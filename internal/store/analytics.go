package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// SalesDailyRange aggregates completed revenue per day over [from, to).
// Cancelled orders are excluded.
func (s *Store) SalesDailyRange(ctx context.Context, from, to time.Time) ([]SalesDaily, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, count(*), coalesce(sum(total), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> $3
		GROUP BY day ORDER BY day`, from, to, OrderCancelled,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SalesDaily, error) {
		var d SalesDaily
		err := r.Scan(&d.Day, &d.Orders, &d.Revenue)
		return d, err
	})
}

// TopProductsRange ranks products by quantity sold over [from, to).
func (s *Store) TopProductsRange(ctx context.Context, from, to time.Time, limit int32) ([]TopProduct, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT oi.product_id, max(oi.title), sum(oi.qty), sum(oi.qty * oi.unit_price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> $3
		GROUP BY oi.product_id
		ORDER BY sum(oi.qty) DESC
		LIMIT $4`, from, to, OrderCancelled, limit,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (TopProduct, error) {
		var t TopProduct
		err := r.Scan(&t.ProductID, &t.Title, &t.QtySold, &t.Revenue)
		return t, err
	})
}

// OverviewStats is the headline dashboard aggregate.
type OverviewStats struct {
	Orders        int64 `json:"orders"`
	Revenue       int64 `json:"revenue"`
	PendingOrders int64 `json:"pendingOrders"`
	OpenReturns   int64 `json:"openReturns"`
}

// Overview computes headline counters over [from, to).
func (s *Store) Overview(ctx context.Context, from, to time.Time) (OverviewStats, error) {
	var st OverviewStats
	err := s.Pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM orders WHERE created_at >= $1 AND created_at < $2 AND status <> $3),
			(SELECT coalesce(sum(total), 0) FROM orders WHERE created_at >= $1 AND created_at < $2 AND status <> $3),
			(SELECT count(*) FROM orders WHERE status = $4),
			(SELECT count(*) FROM return_requests WHERE status = $5)`,
		from, to, OrderCancelled, OrderPendingConfirm, ReturnPending,
	).Scan(&st.Orders, &st.Revenue, &st.PendingOrders, &st.OpenReturns)
	return st, err
}
