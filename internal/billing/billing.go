package billing

import (
	"context"
	"time"
)

// Provider defines the interface to the external subscription provider.
// The production implementation talks to Razorpay; tests use MockProvider.
type Provider interface {
	// CreateSubscription creates a subscription on the provider. The returned
	// subscription is in "created" state; the client-side payment widget
	// completes authentication.
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)

	// FetchSubscription retrieves a subscription by provider id.
	// Used by the reconciliation fallback when local state is inconclusive.
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ListSubscriptions retrieves the most recent subscriptions, newest
	// first. Used by the drift-repair sync.
	ListSubscriptions(ctx context.Context, count int) ([]Subscription, error)
}

// CreateSubscriptionParams contains parameters for creating a subscription.
type CreateSubscriptionParams struct {
	// PlanID is the provider plan id, already mode-scoped and swap-applied.
	PlanID string

	// TotalCount is the number of billing cycles.
	TotalCount int

	// CustomerNotify lets the provider email the customer about lifecycle
	// events.
	CustomerNotify bool

	// OfferID attaches a provider offer; empty for none.
	OfferID string

	// StartAt defers the first charge; zero starts immediately.
	StartAt time.Time

	// Notes are attached verbatim. The webhook reads user_id, coupon_used,
	// plan_name and billing_cycle from here to attribute the subscription.
	Notes map[string]string
}

// Subscription is the provider's view of a subscription.
// Period timestamps are provider epoch seconds; zero when the subscription
// has not been charged yet.
type Subscription struct {
	ID                      string
	PlanID                  string
	Status                  string
	CurrentPeriodStartEpoch int64
	CurrentPeriodEndEpoch   int64
	Notes                   map[string]string
}

// Active reports whether the provider considers the subscription currently
// paid and in good standing.
func (s *Subscription) Active() bool {
	return s.Status == "active"
}

// CurrentPeriodStart converts the provider epoch to a time.Time.
func (s *Subscription) CurrentPeriodStart() time.Time {
	return time.Unix(s.CurrentPeriodStartEpoch, 0).UTC()
}

// CurrentPeriodEnd converts the provider epoch to a time.Time.
func (s *Subscription) CurrentPeriodEnd() time.Time {
	return time.Unix(s.CurrentPeriodEndEpoch, 0).UTC()
}
