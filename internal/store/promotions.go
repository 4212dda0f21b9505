package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const promotionCols = `id, name, product_ids, discount_percent, start_date, end_date, status, created_at, updated_at`

// CreatePromotion inserts a promotion and returns the stored row.
func (s *Store) CreatePromotion(ctx context.Context, p Promotion) (Promotion, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO promotions (name, product_ids, discount_percent, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+promotionCols,
		p.Name, p.ProductIDs, p.DiscountPercent, p.StartDate, p.EndDate, p.Status,
	).Scan(&p.ID, &p.Name, &p.ProductIDs, &p.DiscountPercent, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

// UpdatePromotion replaces the mutable fields of a promotion.
func (s *Store) UpdatePromotion(ctx context.Context, p Promotion) (Promotion, error) {
	err := s.Pool.QueryRow(ctx, `
		UPDATE promotions
		SET name = $2, product_ids = $3, discount_percent = $4,
		    start_date = $5, end_date = $6, status = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+promotionCols,
		p.ID, p.Name, p.ProductIDs, p.DiscountPercent, p.StartDate, p.EndDate, p.Status,
	).Scan(&p.ID, &p.Name, &p.ProductIDs, &p.DiscountPercent, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

// DeletePromotion removes a promotion.
func (s *Store) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPromotion loads a single promotion.
func (s *Store) GetPromotion(ctx context.Context, id uuid.UUID) (Promotion, error) {
	var p Promotion
	err := s.Pool.QueryRow(ctx, `SELECT `+promotionCols+` FROM promotions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.ProductIDs, &p.DiscountPercent, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

// CountPromotions counts all promotions.
func (s *Store) CountPromotions(ctx context.Context) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM promotions`).Scan(&total)
	return total, err
}

// ListPromotions returns promotions newest first.
func (s *Store) ListPromotions(ctx context.Context, limit, offset int32) ([]Promotion, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+promotionCols+` FROM promotions
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPromotion)
}

// ListActivePromotions returns ACTIVE promotions whose window contains now.
// In-effect filtering against a single clock reading happens here so every
// caller sees a consistent set.
func (s *Store) ListActivePromotions(ctx context.Context, now time.Time) ([]Promotion, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+promotionCols+` FROM promotions
		WHERE status = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC`, PromotionActive, now,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPromotion)
}

func scanPromotion(r pgx.Rows) (Promotion, error) {
	var p Promotion
	err := r.Scan(&p.ID, &p.Name, &p.ProductIDs, &p.DiscountPercent, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
