package returns

import (
	"time"

	"github.com/minhanh-dev/backend-moda/internal/store"
)

// WindowDays is the default return window after order creation.
const WindowDays = 7

// DaysSince returns the whole number of 24h periods between then and now.
// The flooring matters at the boundary: an order placed 7 days and 23 hours
// ago is still within a 7-day window.
func DaysSince(then, now time.Time) int {
	diff := now.Sub(then)
	if diff < 0 {
		return 0
	}
	return int(diff / (24 * time.Hour))
}

// Returnable reports whether a return request may be opened against the
// order at the given instant.
func Returnable(o store.Order, now time.Time, windowDays int) bool {
	if windowDays <= 0 {
		windowDays = WindowDays
	}
	if o.Status != store.OrderDelivered && o.Status != store.OrderCompleted {
		return false
	}
	if o.PaymentStatus != store.PaymentPaid {
		return false
	}
	return DaysSince(o.CreatedAt, now) <= windowDays
}

// MaxReturnable is the quantity bound for one return line: the quantity on
// the original order line. Quantities already requested on other returns
// against the same order are not subtracted.
func MaxReturnable(orderItem store.OrderItem) int32 {
	return orderItem.Qty
}

// CanTransition enforces the return request state machine:
// CHO_XU_LY may move to DA_HOAN_TIEN or DA_HUY, both terminal.
func CanTransition(from, to string) bool {
	if from != store.ReturnPending {
		return false
	}
	return to == store.ReturnRefunded || to == store.ReturnCancelled
}

// Editable reports whether items, quantities, and reason may still change.
func Editable(status string) bool {
	return status == store.ReturnPending
}
