package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntitlementDecision is the outcome of an entitlement check. It is derived
// and ephemeral; it is never persisted.
type EntitlementDecision struct {
	// Granted reports whether the user currently has access to paid features.
	Granted bool

	// PlanName and ProviderPlanID identify the plan granting access.
	// Only set when Granted is true.
	PlanName       string
	ProviderPlanID string

	// Reason is the error kind explaining a denial (e.g. KindNoSubscription).
	// Empty when Granted is true.
	Reason string
}

// Deny builds a denial decision for the given error kind.
func Deny(kind string) *EntitlementDecision {
	return &EntitlementDecision{Reason: kind}
}

// CheckoutParams are the provider-facing parameters for creating a
// subscription, produced by resolving a plan selection plus optional coupon.
type CheckoutParams struct {
	// ProviderPlanID is the Razorpay plan id to subscribe to, after any
	// coupon-driven plan swap.
	ProviderPlanID string

	// TotalCount is the number of billing cycles the subscription runs for.
	TotalCount int

	// OfferID is a Razorpay offer to attach, or empty.
	OfferID string

	// StartAt defers the first charge; zero means the subscription starts
	// immediately.
	StartAt time.Time

	// PlanName, BillingCycle and CouponUsed are carried into the provider
	// notes so the webhook can attribute the resulting subscription.
	PlanName     string
	BillingCycle string
	CouponUsed   string
}

// CouponValidation is the caller-facing result of validating a coupon code.
type CouponValidation struct {
	Valid       bool
	Kind        string
	Description string
	PercentOff  int
	MaxDiscount int
	TrialDays   int
}

// FeatureLimits are the feature caps attached to a plan.
// A MaxProducts of -1 means unlimited.
type FeatureLimits struct {
	MaxProducts int
}

// CheckoutSession is returned when a subscription has been created on the
// provider for the client-side payment widget to complete.
type CheckoutSession struct {
	SubscriptionID string
	KeyID          string
	ProviderPlanID string
}

// EntitlementService is the decision surface this core exposes to the
// checkout UI and the publish gate.
type EntitlementService interface {
	// ValidateCoupon checks a coupon code against the registry and, for capped
	// coupons, against current usage. Read-only.
	ValidateCoupon(ctx context.Context, code string) (*CouponValidation, error)

	// ResolveCheckoutPlan composes plan resolution, coupon validation and the
	// founder swap into provider-facing checkout parameters.
	ResolveCheckoutPlan(ctx context.Context, planName, billingCycle, couponCode string) (*CheckoutParams, error)

	// StartCheckout resolves checkout parameters and creates the subscription
	// on the provider, returning what the payment widget needs.
	StartCheckout(ctx context.Context, userID uuid.UUID, planName, billingCycle, couponCode string) (*CheckoutSession, error)

	// VerifyPayment checks the authenticity of a completed checkout using the
	// mode-scoped key secret. It never reveals which input mismatched.
	VerifyPayment(ctx context.Context, paymentID, subscriptionID, signature string) error

	// CheckEntitlement validates the user's stored subscription record.
	CheckEntitlement(ctx context.Context, userID uuid.UUID) (*EntitlementDecision, error)

	// ReconcileAndAuthorize is CheckEntitlement plus a live provider fallback:
	// when the local record is missing or expired and the caller supplies a
	// provider subscription id hint, the provider is consulted directly and an
	// active answer is trusted for this decision and best-effort persisted.
	ReconcileAndAuthorize(ctx context.Context, userID uuid.UUID, providerSubscriptionID string) (*EntitlementDecision, error)

	// GetFeatureLimit reports the feature caps for a provider plan id,
	// falling back to a documented default on unknown ids.
	GetFeatureLimit(ctx context.Context, providerPlanID string) (*FeatureLimits, error)

	// SyncSubscriptions pulls recent subscriptions from the provider and
	// upserts them locally, repairing drift caused by missed webhooks.
	SyncSubscriptions(ctx context.Context) (*SyncReport, error)
}

// SyncReport summarizes a SyncSubscriptions run.
type SyncReport struct {
	Fetched  int
	Upserted int
	Skipped  int
}
