package returns

import (
	"testing"
	"time"

	"github.com/minhanh-dev/backend-moda/internal/store"
)

var policyNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func order(status, payment string, age time.Duration) store.Order {
	return store.Order{Status: status, PaymentStatus: payment, CreatedAt: policyNow.Add(-age)}
}

func TestReturnableRequiresDeliveredOrCompleted(t *testing.T) {
	for _, status := range []string{store.OrderDelivered, store.OrderCompleted} {
		if !Returnable(order(status, store.PaymentPaid, 24*time.Hour), policyNow, WindowDays) {
			t.Errorf("order in %s must be returnable", status)
		}
	}
	for _, status := range []string{store.OrderPendingConfirm, store.OrderShipping, store.OrderCancelled} {
		if Returnable(order(status, store.PaymentPaid, 24*time.Hour), policyNow, WindowDays) {
			t.Errorf("order in %s must not be returnable", status)
		}
	}
}

func TestReturnableRequiresPaid(t *testing.T) {
	for _, payment := range []string{store.PaymentUnpaid, store.PaymentRefunded} {
		if Returnable(order(store.OrderDelivered, payment, 24*time.Hour), policyNow, WindowDays) {
			t.Errorf("order with payment %s must not be returnable", payment)
		}
	}
}

func TestReturnableWindowFloorsWholeDays(t *testing.T) {
	// 7 days and 23 hours old still floors to 7 whole days.
	almost := order(store.OrderDelivered, store.PaymentPaid, 7*24*time.Hour+23*time.Hour)
	if !Returnable(almost, policyNow, WindowDays) {
		t.Fatal("order aged 7d23h must still be within a 7-day window")
	}
	over := order(store.OrderDelivered, store.PaymentPaid, 8*24*time.Hour)
	if Returnable(over, policyNow, WindowDays) {
		t.Fatal("order aged exactly 8 days must be outside the window")
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	if !CanTransition(store.ReturnPending, store.ReturnRefunded) {
		t.Fatal("pending -> refunded must be allowed")
	}
	if !CanTransition(store.ReturnPending, store.ReturnCancelled) {
		t.Fatal("pending -> cancelled must be allowed")
	}
	for _, from := range []string{store.ReturnRefunded, store.ReturnCancelled} {
		for _, to := range []string{store.ReturnPending, store.ReturnRefunded, store.ReturnCancelled} {
			if CanTransition(from, to) {
				t.Errorf("%s -> %s must be rejected, terminal states do not move", from, to)
			}
		}
	}
}

func TestEditableOnlyWhilePending(t *testing.T) {
	if !Editable(store.ReturnPending) {
		t.Fatal("pending returns must be editable")
	}
	if Editable(store.ReturnRefunded) || Editable(store.ReturnCancelled) {
		t.Fatal("terminal returns must not be editable")
	}
}
