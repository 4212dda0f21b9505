package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FavoriteProduct is one wishlist entry joined with its product.
type FavoriteProduct struct {
	ProductID uuid.UUID `json:"productId"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Price     int64     `json:"price"`
	AddedAt   time.Time `json:"addedAt"`
}

// AddFavorite puts a product on the user's wishlist. Adding twice is a no-op.
func (s *Store) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return mapErr(err)
}

// RemoveFavorite takes a product off the user's wishlist.
func (s *Store) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return mapErr(err)
}

// IsFavorite reports whether the product is on the user's wishlist.
func (s *Store) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&exists)
	return exists, mapErr(err)
}

// ListFavorites returns the user's wishlist newest first. Price is the
// product's base variant price.
func (s *Store) ListFavorites(ctx context.Context, userID uuid.UUID) ([]FavoriteProduct, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT f.product_id, p.title, p.slug,
		       COALESCE((SELECT v.price FROM product_variants v WHERE v.product_id = p.id ORDER BY v.position LIMIT 1), 0),
		       f.created_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, func(rows pgx.Rows) (FavoriteProduct, error) {
		var f FavoriteProduct
		err := rows.Scan(&f.ProductID, &f.Title, &f.Slug, &f.Price, &f.AddedAt)
		return f, err
	})
}
