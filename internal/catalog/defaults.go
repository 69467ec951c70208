package catalog

import (
	"time"

	"github.com/frostify/frostify/internal/domain"
)

// DefaultMaxProducts is the documented product cap applied when a plan id is
// not present in the catalog.
const DefaultMaxProducts = 25

const unlimited = -1

// DefaultConfig returns the built-in plan tables for the given mode.
// Starter plans cap products at 25; Pro and Growth are unlimited.
func DefaultConfig(mode domain.Mode) Config {
	plans := testPlans
	if mode == domain.ModeLive {
		plans = livePlans
	}
	return Config{
		Mode:               mode,
		Plans:              plans,
		DefaultMaxProducts: DefaultMaxProducts,
	}
}

var testPlans = []Plan{
	{Name: "Starter", Cycle: CycleMonthly, ProviderPlanID: "plan_S4BFGXTRu7GHxX", FounderProviderPlanID: "plan_S4BHEcxdqLcMDj", MaxProducts: 25},
	{Name: "Pro", Cycle: CycleMonthly, ProviderPlanID: "plan_S4BDgrDG7ivKeR", FounderProviderPlanID: "plan_S4BI0mDKImpPzI", MaxProducts: unlimited},
	{Name: "Growth", Cycle: CycleMonthly, ProviderPlanID: "plan_S4BDMsmUjZXCOM", FounderProviderPlanID: "plan_S4BIhjpwKwAxug", MaxProducts: unlimited},
	{Name: "Starter", Cycle: CycleYearly, ProviderPlanID: "plan_S4BEoNbwUVfQNB", FounderProviderPlanID: "plan_S4BLw6F1nsWNOZ", MaxProducts: 25},
	{Name: "Pro", Cycle: CycleYearly, ProviderPlanID: "plan_S4BCYI3fjqbilb", FounderProviderPlanID: "plan_S4BML6ujolcNKl", MaxProducts: unlimited},
	{Name: "Growth", Cycle: CycleYearly, ProviderPlanID: "plan_S4BBdtWGIXxqLI", FounderProviderPlanID: "plan_S4BNHI0KqufC0j", MaxProducts: unlimited},
}

var livePlans = []Plan{
	{Name: "Starter", Cycle: CycleMonthly, ProviderPlanID: "plan_S2wpNAAtmppvUG", FounderProviderPlanID: "plan_S4EIqVlt6wVfKf", MaxProducts: 25},
	{Name: "Pro", Cycle: CycleMonthly, ProviderPlanID: "plan_S2wqCR4HPKMqwM", FounderProviderPlanID: "plan_S4EJFMkgqhdXUi", MaxProducts: unlimited},
	{Name: "Growth", Cycle: CycleMonthly, ProviderPlanID: "plan_S2wqkKaf1HsR4x", FounderProviderPlanID: "plan_S4EJc0Q2xYvaJh", MaxProducts: unlimited},
	{Name: "Starter", Cycle: CycleYearly, ProviderPlanID: "plan_S2wt1MCSq8rzxV", FounderProviderPlanID: "plan_S4E0T975OQgHl7", MaxProducts: 25},
	{Name: "Pro", Cycle: CycleYearly, ProviderPlanID: "plan_S2wwwLSSoAU9bY", FounderProviderPlanID: "plan_S4ENyxLkjJcDUT", MaxProducts: unlimited},
	{Name: "Growth", Cycle: CycleYearly, ProviderPlanID: "plan_S2wxhv68uVGCPj", FounderProviderPlanID: "plan_S4ENY18sw6dq6U", MaxProducts: unlimited},
}

// DefaultCoupons returns the built-in coupon definitions.
func DefaultCoupons() []Coupon {
	return []Coupon{
		{
			Code:        "FOUNDER",
			Active:      true,
			Description: "Founder Plan (1 Year Access)",
			ExpiresAt:   time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC),
			UsageLimit:  50,
			Kind:        PlanSwap,
		},
		{
			Code:        "FREETRIAL",
			Active:      true,
			Description: "1 Month Free Trial",
			Kind:        TrialPeriod,
			TrialDays:   30,
		},
		{
			Code:        "SAVE70",
			Active:      true,
			Description: "70% Off First Month",
			Kind:        OfferApply,
			PercentOff:  70,
			MaxDiscount: 1300,
			OfferIDs: map[domain.Mode]string{
				domain.ModeTest: "offer_S4Bsf2tMH8hFsz",
				domain.ModeLive: "offer_S4CUbc3yLhHMuJ",
			},
		},
	}
}
