package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/frostify/frostify/internal/domain"
)

var validatorNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func storedSub(status domain.SubscriptionStatus, periodEnd time.Time) *domain.Subscription {
	return &domain.Subscription{
		ProviderSubscriptionID: "sub_00000000000001",
		Status:                 status,
		PlanName:               "Starter",
		ProviderPlanID:         "plan_S4BFGXTRu7GHxX",
		CurrentPeriodStart:     periodEnd.AddDate(0, -1, 0),
		CurrentPeriodEnd:       periodEnd,
	}
}

func TestValidateSubscription(t *testing.T) {
	future := validatorNow.AddDate(0, 0, 10)
	past := validatorNow.AddDate(0, 0, -10)

	tests := []struct {
		name       string
		sub        *domain.Subscription
		granted    bool
		wantReason string
	}{
		{
			name:       "no record",
			sub:        nil,
			wantReason: domain.KindNoSubscription,
		},
		{
			name:    "active within period",
			sub:     storedSub(domain.StatusActive, future),
			granted: true,
		},
		{
			name:    "trialing within period",
			sub:     storedSub(domain.StatusTrialing, future),
			granted: true,
		},
		{
			name:    "completed within final period",
			sub:     storedSub(domain.StatusCompleted, future),
			granted: true,
		},
		{
			name:       "active but period over",
			sub:        storedSub(domain.StatusActive, past),
			wantReason: domain.KindSubscriptionExpired,
		},
		{
			name:       "completed and period over",
			sub:        storedSub(domain.StatusCompleted, past),
			wantReason: domain.KindSubscriptionExpired,
		},
		{
			name:       "canceled denies even with future period",
			sub:        storedSub(domain.StatusCanceled, future),
			wantReason: domain.KindSubscriptionInactive,
		},
		{
			name:       "past_due denies even with future period",
			sub:        storedSub(domain.StatusPastDue, future),
			wantReason: domain.KindSubscriptionInactive,
		},
		{
			name:       "halted denies",
			sub:        storedSub(domain.StatusHalted, future),
			wantReason: domain.KindSubscriptionInactive,
		},
		{
			name:       "unknown status never passes",
			sub:        storedSub(domain.SubscriptionStatus("charged"), future),
			wantReason: domain.KindInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ValidateSubscription(tt.sub, validatorNow)
			assert.Equal(t, tt.granted, decision.Granted)
			if tt.granted {
				assert.Empty(t, decision.Reason)
				assert.Equal(t, "Starter", decision.PlanName)
				assert.Equal(t, "plan_S4BFGXTRu7GHxX", decision.ProviderPlanID)
			} else {
				assert.Equal(t, tt.wantReason, decision.Reason)
				assert.Empty(t, decision.PlanName)
			}
		})
	}
}

func TestValidateSubscription_ExpiryBoundary(t *testing.T) {
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	sub := storedSub(domain.StatusActive, end)

	// One instant before period end still grants.
	assert.True(t, ValidateSubscription(sub, end.Add(-time.Nanosecond)).Granted)

	// The period-end instant itself denies.
	decision := ValidateSubscription(sub, end)
	assert.False(t, decision.Granted)
	assert.Equal(t, domain.KindSubscriptionExpired, decision.Reason)
}

func TestValidateSubscription_Deterministic(t *testing.T) {
	sub := storedSub(domain.StatusActive, validatorNow.AddDate(0, 1, 0))
	first := ValidateSubscription(sub, validatorNow)
	second := ValidateSubscription(sub, validatorNow)
	assert.Equal(t, first, second)
}
