package catalog

import (
	"strings"
	"time"

	"github.com/frostify/frostify/internal/domain"
)

// CouponKind tells the resolver how a coupon changes the checkout.
type CouponKind string

const (
	// PlanSwap silently substitutes the founder plan id and shortens the
	// subscription to one paid year.
	PlanSwap CouponKind = "plan_swap"

	// TrialPeriod defers the first charge by the coupon's trial days.
	TrialPeriod CouponKind = "trial_period"

	// OfferApply attaches a Razorpay offer id to the subscription.
	OfferApply CouponKind = "offer_apply"
)

// Coupon is an immutable promotional rule. Codes are stored uppercase and
// matched case- and whitespace-insensitively.
type Coupon struct {
	Code        string
	Active      bool
	Description string

	// ExpiresAt is the instant the coupon stops validating; the instant
	// itself is already invalid. Zero means no expiry.
	ExpiresAt time.Time

	// UsageLimit caps total redemptions; 0 means uncapped.
	UsageLimit int

	Kind        CouponKind
	PercentOff  int
	MaxDiscount int
	TrialDays   int

	// OfferIDs maps each mode to the Razorpay offer id for offer-apply
	// coupons. Offer ids are mode-scoped and never interchangeable.
	OfferIDs map[domain.Mode]string
}

// Registry is the static coupon catalog. Usage-cap checks are the caller's
// concern (they need the store); the registry validates everything static.
type Registry struct {
	coupons map[string]Coupon
}

// NormalizeCode trims and uppercases a coupon code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewRegistry builds a Registry, keying coupons by their normalized code.
func NewRegistry(coupons []Coupon) *Registry {
	m := make(map[string]Coupon, len(coupons))
	for _, c := range coupons {
		c.Code = NormalizeCode(c.Code)
		m[c.Code] = c
	}
	return &Registry{coupons: m}
}

// Lookup validates the static rules of a coupon code: existence, active flag
// and expiry. It does not consult usage counts.
func (r *Registry) Lookup(code string, now time.Time) (*Coupon, error) {
	c, ok := r.coupons[NormalizeCode(code)]
	if !ok || !c.Active {
		return nil, domain.ErrCouponInvalid
	}
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return nil, domain.ErrCouponExpired
	}
	return &c, nil
}

// OfferIDFor returns the coupon's offer id for the given mode.
// Fails with OfferUnavailable when the coupon has no offer for that mode.
func (c *Coupon) OfferIDFor(mode domain.Mode) (string, error) {
	id, ok := c.OfferIDs[mode]
	if !ok || id == "" {
		return "", domain.ErrOfferUnavailable
	}
	return id, nil
}
