package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PromoResolutionTotal counts promotion resolution outcomes by result
	// (discounted, identity).
	PromoResolutionTotal *prometheus.CounterVec
	// VoucherValidationTotal counts voucher validation outcomes.
	VoucherValidationTotal *prometheus.CounterVec
	// CheckoutTotal counts checkout attempts by result.
	CheckoutTotal *prometheus.CounterVec
	// ReturnRequestTotal counts return request lifecycle transitions.
	ReturnRequestTotal *prometheus.CounterVec
	// RefundAmount records refund amounts settled on return requests.
	RefundAmount prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PromoResolutionTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_resolution_total",
			Help:      "Count of promotion price resolutions by result.",
		}, []string{"result"}))
		VoucherValidationTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_validation_total",
			Help:      "Count of voucher validation outcomes.",
		}, []string{"result"}))
		CheckoutTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by result.",
		}, []string{"result"}))
		ReturnRequestTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "return_request_total",
			Help:      "Count of return request transitions by target status.",
		}, []string{"status"}))
		RefundAmount = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refund_amount",
			Help:      "Refund amounts settled on return requests, in minor currency units.",
			Buckets:   []float64{10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 5_000_000},
		}))
	})
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram) prometheus.Histogram {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
	return h
}
