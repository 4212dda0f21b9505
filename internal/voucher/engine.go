package voucher

import (
	"errors"
	"time"

	"github.com/minhanh-dev/backend-moda/internal/pricing"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

var (
	// ErrNotFound is returned when no voucher matches the code.
	ErrNotFound = errors.New("voucher not found")
	// ErrInactive is returned before the voucher's validity window opens.
	ErrInactive = errors.New("voucher not active yet")
	// ErrExpired is returned after the voucher's validity window closes.
	ErrExpired = errors.New("voucher expired")
	// ErrUsageLimitReached indicates the voucher exhausted its global quota.
	ErrUsageLimitReached = errors.New("voucher usage limit reached")
	// ErrMinOrderNotMet indicates the order value is below the voucher minimum.
	ErrMinOrderNotMet = errors.New("order value below voucher minimum")
)

// Validate checks whether the voucher can be applied to an order of the
// given value at the given instant.
func Validate(v store.Voucher, orderValue int64, now time.Time) error {
	if v.ValidFrom != nil && now.Before(*v.ValidFrom) {
		return ErrInactive
	}
	if v.ValidTo != nil && now.After(*v.ValidTo) {
		return ErrExpired
	}
	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		return ErrUsageLimitReached
	}
	if orderValue < v.MinOrderValue {
		return ErrMinOrderNotMet
	}
	return nil
}

// Discount computes the voucher discount against an order value. Percentage
// vouchers round half up and respect MaxDiscount when it is positive; fixed
// amounts never exceed the order value.
func Discount(v store.Voucher, orderValue int64) int64 {
	if orderValue <= 0 {
		return 0
	}
	var discount int64
	switch v.Kind {
	case store.VoucherPercentage:
		discount = pricing.RoundHalfUpDiv(orderValue*v.Value, 100)
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	case store.VoucherFixedAmount:
		discount = v.Value
	default:
		return 0
	}
	if discount > orderValue {
		discount = orderValue
	}
	if discount < 0 {
		return 0
	}
	return discount
}
