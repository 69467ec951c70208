package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the locally stored lifecycle state of a subscription.
// Rows are written by the external Razorpay webhook handler and, as a
// best-effort fallback, by the reconciliation path in this core.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusHalted   SubscriptionStatus = "halted"
	StatusCanceled SubscriptionStatus = "canceled"

	// StatusCompleted means the subscription finished its final paid cycle.
	// For entitlement purposes it is an alias of StatusActive: the period-end
	// check alone decides when access stops.
	StatusCompleted SubscriptionStatus = "completed"
)

// Subscription is a locally persisted subscription record, joined with the
// plan it points at so validation can report the plan without another lookup.
type Subscription struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	ProviderSubscriptionID string
	Status                 SubscriptionStatus
	PlanID                 uuid.UUID
	PlanName               string
	ProviderPlanID         string
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	Metadata               map[string]string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PlanRecord is a row of the plans table: the internal identity of a
// provider-side plan id, seeded from the catalog.
type PlanRecord struct {
	ID             uuid.UUID
	ProviderPlanID string
	Name           string
	ProductLimit   int
	WebsiteLimit   int
}

// UpsertSubscriptionParams describes a subscription write keyed by the
// provider subscription id. Upserts are last-write-wins; repeating the same
// provider subscription id with new period timestamps leaves one row holding
// the latest values.
type UpsertSubscriptionParams struct {
	UserID                 uuid.UUID
	ProviderSubscriptionID string
	Status                 SubscriptionStatus
	PlanID                 *uuid.UUID
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	Metadata               map[string]string
}

// SubscriptionStore is the persistence boundary for subscription rows.
// This core never deletes rows and never mutates plan configuration.
type SubscriptionStore interface {
	// LatestEntitled returns the user's most recent subscription with status
	// active or trialing, ordered by current_period_end descending.
	// Returns (nil, nil) when no such row exists.
	LatestEntitled(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// CountByProviderPlanIDs counts subscriptions whose plan resolves to one of
	// the given provider plan ids and whose status is one of the given
	// statuses. Used to enforce coupon redemption caps.
	CountByProviderPlanIDs(ctx context.Context, providerPlanIDs []string, statuses []SubscriptionStatus) (int, error)

	// Upsert inserts or updates a subscription keyed by provider subscription id.
	Upsert(ctx context.Context, params UpsertSubscriptionParams) error

	// PlanByProviderPlanID resolves the internal plan row for a provider plan
	// id. Returns (nil, nil) when the id is unknown.
	PlanByProviderPlanID(ctx context.Context, providerPlanID string) (*PlanRecord, error)
}
