package billing

import "github.com/frostify/frostify/internal/domain"

// MapProviderStatus translates a Razorpay subscription status into the local
// stored status. Returns ok=false for statuses this core does not persist.
//
//   - authenticated, active, resumed -> active
//   - created, pending, paused       -> past_due (no paid access yet / blocked)
//   - halted                         -> halted
//   - cancelled, expired             -> canceled
//   - completed                      -> completed (validated by period end)
func MapProviderStatus(providerStatus string) (domain.SubscriptionStatus, bool) {
	switch providerStatus {
	case "authenticated", "active", "resumed":
		return domain.StatusActive, true
	case "created", "pending", "paused":
		return domain.StatusPastDue, true
	case "halted":
		return domain.StatusHalted, true
	case "cancelled", "expired":
		return domain.StatusCanceled, true
	case "completed":
		return domain.StatusCompleted, true
	default:
		return "", false
	}
}
