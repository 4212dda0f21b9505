package pricing

import "testing"

func TestComputeTaxOnFullSubtotal(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 150_000}, {Qty: 1, UnitPrice: 200_000}}
	got := Compute(items, 50_000, 900, 30_000)
	if got.Subtotal != 500_000 {
		t.Fatalf("subtotal = %d, want 500000", got.Subtotal)
	}
	if got.Tax != 45_000 {
		t.Fatalf("tax = %d, want 45000 (9%% of the undiscounted subtotal)", got.Tax)
	}
	if got.Total != 525_000 {
		t.Fatalf("total = %d, want 525000", got.Total)
	}
}

func TestComputeDiscountClampedToSubtotal(t *testing.T) {
	items := []Item{{Qty: 1, UnitPrice: 100_000}}
	got := Compute(items, 250_000, 0, 0)
	if got.Discount != 100_000 {
		t.Fatalf("discount = %d, want clamp to subtotal 100000", got.Discount)
	}
	if got.Total != 0 {
		t.Fatalf("total = %d, want 0", got.Total)
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	got := Compute([]Item{{Qty: 1, UnitPrice: 10_000}}, 10_000, 0, 0)
	if got.Total != 0 {
		t.Fatalf("total = %d, want 0", got.Total)
	}
}

func TestComputeTaxRoundsHalfUp(t *testing.T) {
	// 61 * 900 / 10000 = 5.49 -> 5; 62 * 900 / 10000 = 5.58 -> 6.
	if got := Compute([]Item{{Qty: 1, UnitPrice: 61}}, 0, 900, 0).Tax; got != 5 {
		t.Fatalf("tax = %d, want 5", got)
	}
	if got := Compute([]Item{{Qty: 1, UnitPrice: 62}}, 0, 900, 0).Tax; got != 6 {
		t.Fatalf("tax = %d, want 6", got)
	}
}

func TestComputeSkipsNonPositiveQty(t *testing.T) {
	items := []Item{{Qty: 0, UnitPrice: 100}, {Qty: -2, UnitPrice: 100}, {Qty: 3, UnitPrice: 100}}
	if got := Compute(items, 0, 0, 0).Subtotal; got != 300 {
		t.Fatalf("subtotal = %d, want 300", got)
	}
}

func TestRefundTotalExcludesTaxAndShipping(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 120_000}, {Qty: 1, UnitPrice: 80_000}}
	if got := RefundTotal(items); got != 320_000 {
		t.Fatalf("refund = %d, want 320000", got)
	}
}

func TestRefundTotalRecomputeStable(t *testing.T) {
	items := []Item{{Qty: 3, UnitPrice: 99_000}, {Qty: 1, UnitPrice: 250_000}}
	first := RefundTotal(items)
	second := RefundTotal(items)
	if first != second {
		t.Fatalf("recompute changed: %d then %d", first, second)
	}
}
