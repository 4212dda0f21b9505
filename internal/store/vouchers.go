package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const voucherCols = `id, code, discount_type, discount_value, max_discount, min_order_value, valid_from, valid_to, usage_limit, used_count`

// CreateVoucher inserts a voucher. Codes are stored upper-cased.
func (s *Store) CreateVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO vouchers (code, discount_type, discount_value, max_discount, min_order_value, valid_from, valid_to, usage_limit)
		VALUES (upper($1), $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+voucherCols,
		v.Code, v.Kind, v.Value, v.MaxDiscount, v.MinOrderValue, v.ValidFrom, v.ValidTo, v.UsageLimit,
	).Scan(&v.ID, &v.Code, &v.Kind, &v.Value, &v.MaxDiscount, &v.MinOrderValue, &v.ValidFrom, &v.ValidTo, &v.UsageLimit, &v.UsedCount)
	return v, mapErr(err)
}

// UpdateVoucher replaces the mutable fields of a voucher.
func (s *Store) UpdateVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	err := s.Pool.QueryRow(ctx, `
		UPDATE vouchers
		SET code = upper($2), discount_type = $3, discount_value = $4, max_discount = $5,
		    min_order_value = $6, valid_from = $7, valid_to = $8, usage_limit = $9
		WHERE id = $1
		RETURNING `+voucherCols,
		v.ID, v.Code, v.Kind, v.Value, v.MaxDiscount, v.MinOrderValue, v.ValidFrom, v.ValidTo, v.UsageLimit,
	).Scan(&v.ID, &v.Code, &v.Kind, &v.Value, &v.MaxDiscount, &v.MinOrderValue, &v.ValidFrom, &v.ValidTo, &v.UsageLimit, &v.UsedCount)
	return v, mapErr(err)
}

// DeleteVoucher removes a voucher.
func (s *Store) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetVoucherByCode looks a voucher up case-insensitively.
func (s *Store) GetVoucherByCode(ctx context.Context, code string) (Voucher, error) {
	var v Voucher
	err := s.Pool.QueryRow(ctx, `SELECT `+voucherCols+` FROM vouchers WHERE code = upper($1)`,
		strings.TrimSpace(code),
	).Scan(&v.ID, &v.Code, &v.Kind, &v.Value, &v.MaxDiscount, &v.MinOrderValue, &v.ValidFrom, &v.ValidTo, &v.UsageLimit, &v.UsedCount)
	return v, mapErr(err)
}

// CountVouchers counts all vouchers.
func (s *Store) CountVouchers(ctx context.Context) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM vouchers`).Scan(&total)
	return total, err
}

// ListVouchers returns vouchers ordered by code.
func (s *Store) ListVouchers(ctx context.Context, limit, offset int32) ([]Voucher, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+voucherCols+` FROM vouchers ORDER BY code LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (Voucher, error) {
		var v Voucher
		err := r.Scan(&v.ID, &v.Code, &v.Kind, &v.Value, &v.MaxDiscount, &v.MinOrderValue, &v.ValidFrom, &v.ValidTo, &v.UsageLimit, &v.UsedCount)
		return v, err
	})
}

// ConsumeVoucherTx bumps used_count inside tx, failing when the usage limit
// is exhausted.
func (s *Store) ConsumeVoucherTx(ctx context.Context, tx pgx.Tx, code string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE vouchers SET used_count = used_count + 1
		WHERE code = upper($1)
		  AND (usage_limit IS NULL OR used_count < usage_limit)`, code,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
