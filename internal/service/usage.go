package service

import (
	"context"

	"github.com/frostify/frostify/internal/catalog"
	"github.com/frostify/frostify/internal/domain"
)

// UsageCounter counts redemptions of capped plan-swap coupons.
//
// A redemption is any stored subscription whose plan resolves into the
// coupon's founder plan ids for the active mode, with status active or
// past_due. past_due counts because the redemption already consumed a slot
// even though that subscriber currently fails validation.
//
// The count is read-only and is not atomic with subscription creation, which
// happens on the provider side and lands via webhook. Two concurrent
// redemptions of the last slot can both pass.
type UsageCounter struct {
	store   domain.SubscriptionStore
	catalog *catalog.Catalog
}

// NewUsageCounter creates a UsageCounter over the given store and catalog.
func NewUsageCounter(store domain.SubscriptionStore, cat *catalog.Catalog) *UsageCounter {
	return &UsageCounter{store: store, catalog: cat}
}

// CountUsage returns the current redemption count for a coupon.
// Coupons that map to no plan ids (non plan-swap kinds) count zero.
func (u *UsageCounter) CountUsage(ctx context.Context, coupon *catalog.Coupon) (int, error) {
	targets := u.catalog.SwapTargets(coupon)
	if len(targets) == 0 {
		return 0, nil
	}

	return u.store.CountByProviderPlanIDs(ctx, targets,
		[]domain.SubscriptionStatus{domain.StatusActive, domain.StatusPastDue})
}
