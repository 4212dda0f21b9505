package pricing

// Money represents a monetary value stored in minor units (whole VND).
type Money = int64

// Item describes a line item used for totals calculation.
type Item struct {
	Qty       int32
	UnitPrice Money
}

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal Money
	Discount Money
	Tax      Money
	Shipping Money
	Total    Money
}

// RoundHalfUpDiv divides num by den rounding half away from zero upward.
func RoundHalfUpDiv(num, den Money) Money {
	if den <= 0 {
		return 0
	}
	return (num + den/2) / den
}

// Compute calculates order totals. Tax applies to the full subtotal before
// the voucher discount, and the grand total never goes below zero.
func Compute(items []Item, voucherDiscount Money, taxBps int64, shipping Money) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	if voucherDiscount < 0 {
		voucherDiscount = 0
	}
	if voucherDiscount > subtotal {
		voucherDiscount = subtotal
	}
	tax := RoundHalfUpDiv(subtotal*taxBps, 10000)
	total := subtotal - voucherDiscount + tax + shipping
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal: subtotal,
		Discount: voucherDiscount,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}
}

// RefundTotal sums the line values of the given items. Tax and shipping are
// never part of a refund.
func RefundTotal(items []Item) Money {
	var total Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		total += Money(it.Qty) * it.UnitPrice
	}
	return total
}
