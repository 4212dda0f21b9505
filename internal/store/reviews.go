package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewCols = `id, product_id, user_id, rating, comment, created_at, updated_at`

// Review is one customer rating of a product. A user reviews a product at
// most once.
type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int32     `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingSummary aggregates a product's reviews.
type RatingSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// UpsertReview creates or replaces the user's review of a product.
func (s *Store) UpsertReview(ctx context.Context, r Review) (Review, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
		RETURNING `+reviewCols,
		r.ProductID, r.UserID, r.Rating, r.Comment,
	).Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	return r, mapErr(err)
}

// DeleteReview removes the user's review of a product.
func (s *Store) DeleteReview(ctx context.Context, userID, productID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM reviews WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReviews returns the number of reviews on a product.
func (s *Store) CountReviews(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE product_id = $1`, productID).Scan(&n)
	return n, mapErr(err)
}

// ListReviews returns a product's reviews newest first.
func (s *Store) ListReviews(ctx context.Context, productID uuid.UUID, limit, offset int32) ([]Review, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+reviewCols+` FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, func(rows pgx.Rows) (Review, error) {
		var r Review
		err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
		return r, err
	})
}

// HasPurchased reports whether the user has a delivered or completed order
// containing the product.
func (s *Store) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = ANY($3)
		)`, userID, productID, []string{OrderDelivered, OrderCompleted}).Scan(&exists)
	return exists, mapErr(err)
}

// ProductRating aggregates rating count and average for a product.
func (s *Store) ProductRating(ctx context.Context, productID uuid.UUID) (RatingSummary, error) {
	var sum RatingSummary
	err := s.Pool.QueryRow(ctx, `
		SELECT count(*), COALESCE(avg(rating), 0) FROM reviews WHERE product_id = $1`,
		productID).Scan(&sum.Count, &sum.Average)
	return sum, mapErr(err)
}
