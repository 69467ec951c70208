package service

import (
	"time"

	"github.com/frostify/frostify/internal/domain"
)

// ValidateSubscription is the pure read-side entitlement decision over a
// stored subscription record. It performs no transitions and no I/O:
// identical inputs always produce identical decisions.
//
// Policy:
//   - no record -> NoSubscription
//   - canceled, past_due, halted -> SubscriptionInactive, regardless of
//     period dates (no grace window)
//   - active, trialing, completed -> SubscriptionExpired once now reaches
//     currentPeriodEnd (the expiry instant itself already denies), otherwise
//     granted under the subscription's stored plan
//   - anything else -> InvalidStatus, never a silent pass
//
// "completed" means the final paid cycle was charged; it grants exactly like
// "active" because the period-end check is what terminates access.
func ValidateSubscription(sub *domain.Subscription, now time.Time) *domain.EntitlementDecision {
	if sub == nil {
		return domain.Deny(domain.KindNoSubscription)
	}

	switch sub.Status {
	case domain.StatusCanceled, domain.StatusPastDue, domain.StatusHalted:
		return domain.Deny(domain.KindSubscriptionInactive)

	case domain.StatusActive, domain.StatusTrialing, domain.StatusCompleted:
		if !now.Before(sub.CurrentPeriodEnd) {
			return domain.Deny(domain.KindSubscriptionExpired)
		}
		return &domain.EntitlementDecision{
			Granted:        true,
			PlanName:       sub.PlanName,
			ProviderPlanID: sub.ProviderPlanID,
		}

	default:
		return domain.Deny(domain.KindInvalidStatus)
	}
}
