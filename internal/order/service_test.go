package order

import (
	"testing"

	"github.com/minhanh-dev/backend-moda/internal/store"
)

func TestStatusFlow(t *testing.T) {
	allowed := []struct{ from, to string }{
		{store.OrderPendingConfirm, store.OrderShipping},
		{store.OrderPendingConfirm, store.OrderCancelled},
		{store.OrderShipping, store.OrderDelivered},
		{store.OrderShipping, store.OrderCancelled},
		{store.OrderDelivered, store.OrderCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be allowed", tc.from, tc.to)
		}
	}
	rejected := []struct{ from, to string }{
		{store.OrderPendingConfirm, store.OrderDelivered},
		{store.OrderDelivered, store.OrderCancelled},
		{store.OrderCompleted, store.OrderShipping},
		{store.OrderCancelled, store.OrderPendingConfirm},
	}
	for _, tc := range rejected {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}
}

func TestPaymentFlow(t *testing.T) {
	if !CanTransitionPayment(store.PaymentUnpaid, store.PaymentPaid) {
		t.Fatal("UNPAID -> PAID must be allowed")
	}
	if !CanTransitionPayment(store.PaymentPaid, store.PaymentRefunded) {
		t.Fatal("PAID -> REFUNDED must be allowed")
	}
	if CanTransitionPayment(store.PaymentUnpaid, store.PaymentRefunded) {
		t.Fatal("UNPAID -> REFUNDED must be rejected")
	}
	if CanTransitionPayment(store.PaymentRefunded, store.PaymentPaid) {
		t.Fatal("REFUNDED is terminal")
	}
}
