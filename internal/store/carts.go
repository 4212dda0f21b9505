package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cartItemCols = `id, cart_id, product_id, variant_id, title, slug, qty, unit_price, original_price, discount_percent, qty * unit_price AS subtotal`

// GetOrCreateCartByUser finds the user's open cart or creates one.
func (s *Store) GetOrCreateCartByUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) (Cart, error) {
	var c Cart
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO carts (user_id, expires_at)
		VALUES ($1, now() + $2)
		ON CONFLICT (user_id) DO UPDATE SET expires_at = now() + $2
		RETURNING id, user_id, anon_id, applied_voucher_code, expires_at`,
		userID, ttl,
	).Scan(&c.ID, &c.UserID, &c.AnonID, &c.AppliedVoucherCode, &c.ExpiresAt)
	return c, mapErr(err)
}

// GetOrCreateCartByAnon finds an anonymous visitor's cart or creates one.
func (s *Store) GetOrCreateCartByAnon(ctx context.Context, anonID string, ttl time.Duration) (Cart, error) {
	var c Cart
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO carts (anon_id, expires_at)
		VALUES ($1, now() + $2)
		ON CONFLICT (anon_id) DO UPDATE SET expires_at = now() + $2
		RETURNING id, user_id, anon_id, applied_voucher_code, expires_at`,
		anonID, ttl,
	).Scan(&c.ID, &c.UserID, &c.AnonID, &c.AppliedVoucherCode, &c.ExpiresAt)
	return c, mapErr(err)
}

// ListCartItems returns all lines in a cart, oldest first.
func (s *Store) ListCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+cartItemCols+` FROM cart_items WHERE cart_id = $1 ORDER BY created_at`, cartID,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCartItem)
}

// UpsertCartItem adds a line or increments the quantity of an existing line
// for the same variant. The captured prices are kept from the first add.
func (s *Store) UpsertCartItem(ctx context.Context, it CartItem) (CartItem, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, variant_id, title, slug, qty, unit_price, original_price, discount_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (cart_id, product_id, variant_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty
		RETURNING `+cartItemCols,
		it.CartID, it.ProductID, it.VariantID, it.Title, it.Slug, it.Qty, it.UnitPrice, it.OriginalPrice, it.DiscountPercent,
	).Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantID, &it.Title, &it.Slug, &it.Qty, &it.UnitPrice, &it.OriginalPrice, &it.DiscountPercent, &it.Subtotal)
	return it, mapErr(err)
}

// SetCartItemQty replaces a line's quantity.
func (s *Store) SetCartItemQty(ctx context.Context, cartID, itemID uuid.UUID, qty int32) (CartItem, error) {
	var it CartItem
	err := s.Pool.QueryRow(ctx, `
		UPDATE cart_items SET qty = $3
		WHERE cart_id = $1 AND id = $2
		RETURNING `+cartItemCols,
		cartID, itemID, qty,
	).Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantID, &it.Title, &it.Slug, &it.Qty, &it.UnitPrice, &it.OriginalPrice, &it.DiscountPercent, &it.Subtotal)
	return it, mapErr(err)
}

// DeleteCartItem removes one line.
func (s *Store) DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCartTx empties a cart and drops its voucher inside tx.
func (s *Store) ClearCartTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE carts SET applied_voucher_code = NULL WHERE id = $1`, cartID)
	return err
}

// SetCartVoucher stores (or clears, with nil) the applied voucher code.
func (s *Store) SetCartVoucher(ctx context.Context, cartID uuid.UUID, code *string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE carts SET applied_voucher_code = $2 WHERE id = $1`, cartID, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCartItem(r pgx.Rows) (CartItem, error) {
	var it CartItem
	err := r.Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantID, &it.Title, &it.Slug, &it.Qty, &it.UnitPrice, &it.OriginalPrice, &it.DiscountPercent, &it.Subtotal)
	return it, err
}
