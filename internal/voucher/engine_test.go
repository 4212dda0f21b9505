package voucher

import (
	"errors"
	"testing"
	"time"

	"github.com/minhanh-dev/backend-moda/internal/store"
)

var engineNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestValidateWindowAndUsage(t *testing.T) {
	from := engineNow.Add(-time.Hour)
	to := engineNow.Add(time.Hour)
	limit := int32(10)
	base := store.Voucher{Code: "SUMMER", Kind: store.VoucherPercentage, Value: 10,
		ValidFrom: &from, ValidTo: &to, UsageLimit: &limit}

	if err := Validate(base, 100_000, engineNow); err != nil {
		t.Fatalf("expected valid voucher, got %v", err)
	}

	early := base
	start := engineNow.Add(time.Minute)
	early.ValidFrom = &start
	if err := Validate(early, 100_000, engineNow); !errors.Is(err, ErrInactive) {
		t.Fatalf("err = %v, want ErrInactive", err)
	}

	late := base
	end := engineNow.Add(-time.Minute)
	late.ValidTo = &end
	if err := Validate(late, 100_000, engineNow); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}

	spent := base
	spent.UsedCount = 10
	if err := Validate(spent, 100_000, engineNow); !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("err = %v, want ErrUsageLimitReached", err)
	}
}

func TestValidateMinOrderValue(t *testing.T) {
	v := store.Voucher{Code: "BIG", Kind: store.VoucherFixedAmount, Value: 50_000, MinOrderValue: 300_000}
	if err := Validate(v, 299_999, engineNow); !errors.Is(err, ErrMinOrderNotMet) {
		t.Fatalf("err = %v, want ErrMinOrderNotMet", err)
	}
	if err := Validate(v, 300_000, engineNow); err != nil {
		t.Fatalf("order exactly at minimum must pass, got %v", err)
	}
}

func TestDiscountPercentageCappedByMax(t *testing.T) {
	v := store.Voucher{Kind: store.VoucherPercentage, Value: 20, MaxDiscount: 30_000}
	if got := Discount(v, 500_000); got != 30_000 {
		t.Fatalf("discount = %d, want cap 30000", got)
	}
	uncapped := store.Voucher{Kind: store.VoucherPercentage, Value: 20}
	if got := Discount(uncapped, 500_000); got != 100_000 {
		t.Fatalf("discount = %d, want 100000 with no cap", got)
	}
}

func TestDiscountPercentageRoundsHalfUp(t *testing.T) {
	v := store.Voucher{Kind: store.VoucherPercentage, Value: 15}
	// 333 * 15% = 49.95 rounds to 50; 330 * 15% = 49.5 rounds to 50; 329 * 15% = 49.35 rounds to 49.
	if got := Discount(v, 333); got != 50 {
		t.Fatalf("discount = %d, want 50", got)
	}
	if got := Discount(v, 330); got != 50 {
		t.Fatalf("discount = %d, want 50 (half rounds up)", got)
	}
	if got := Discount(v, 329); got != 49 {
		t.Fatalf("discount = %d, want 49", got)
	}
}

func TestDiscountFixedAmountCappedAtOrderValue(t *testing.T) {
	v := store.Voucher{Kind: store.VoucherFixedAmount, Value: 80_000}
	if got := Discount(v, 50_000); got != 50_000 {
		t.Fatalf("discount = %d, want clamp to order value 50000", got)
	}
	if got := Discount(v, 200_000); got != 80_000 {
		t.Fatalf("discount = %d, want 80000", got)
	}
}
