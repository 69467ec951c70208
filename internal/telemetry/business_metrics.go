package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for entitlement-level observability.
type BusinessMetrics struct {
	// Coupons
	CouponValidations *prometheus.CounterVec

	// Checkout
	CheckoutResolutions  *prometheus.CounterVec
	CheckoutsStarted     *prometheus.CounterVec
	PaymentVerifications *prometheus.CounterVec

	// Entitlement
	EntitlementChecks  *prometheus.CounterVec
	ReconcileFallbacks *prometheus.CounterVec

	// Provider / store drift
	FallbackUpsertFailures prometheus.Counter
	ProviderCallDuration   *prometheus.HistogramVec
	SyncedSubscriptions    *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "frostify"
	}

	subsystem := "billing"

	return &BusinessMetrics{
		CouponValidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_validations_total",
				Help:      "Coupon validation attempts by code and result",
			},
			[]string{"code", "result"},
		),
		CheckoutResolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_resolutions_total",
				Help:      "Checkout plan resolutions by plan, cycle and result",
			},
			[]string{"plan", "cycle", "result"},
		),
		CheckoutsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkouts_started_total",
				Help:      "Provider subscriptions created for checkout by result",
			},
			[]string{"result"},
		),
		PaymentVerifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_verifications_total",
				Help:      "Payment signature verifications by result",
			},
			[]string{"result"},
		),
		EntitlementChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "entitlement_checks_total",
				Help:      "Entitlement decisions by outcome reason (granted or denial kind)",
			},
			[]string{"reason"},
		),
		ReconcileFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconcile_fallbacks_total",
				Help:      "Provider fallback consultations during reconciliation by outcome",
			},
			[]string{"outcome"},
		),
		FallbackUpsertFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fallback_upsert_failures_total",
				Help:      "Best-effort subscription upserts that failed after a granted fallback decision",
			},
		),
		ProviderCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_call_duration_seconds",
				Help:      "Razorpay API call duration by operation and status",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "status"},
		),
		SyncedSubscriptions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "synced_subscriptions_total",
				Help:      "Subscriptions processed by the provider sync by result",
			},
			[]string{"result"},
		),
	}
}
