// Package catalog holds the static, per-mode plan and coupon configuration.
// A Catalog is built once at process start from an immutable Config and is
// safe for concurrent use; nothing in it mutates at runtime.
package catalog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/frostify/frostify/internal/domain"
)

// Billing cycles accepted by the catalog.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Plan maps an internal (name, cycle) pair to its provider plan ids.
type Plan struct {
	// Name is the plan's display name, e.g. "Starter".
	Name string

	// Cycle is the billing cycle, "monthly" or "yearly".
	Cycle string

	// ProviderPlanID is the standard Razorpay plan id for this entry.
	ProviderPlanID string

	// FounderProviderPlanID is the discounted plan id substituted by a
	// plan-swap coupon. Empty when the plan has no founder variant.
	FounderProviderPlanID string

	// MaxProducts is the product cap for this plan; -1 means unlimited.
	MaxProducts int
}

func (p Plan) key() string {
	return strings.ToLower(p.Name) + "_" + strings.ToLower(p.Cycle)
}

// Config is the immutable input for building a Catalog. One Config exists per
// mode; test and live ids never share a Config.
type Config struct {
	Mode  domain.Mode
	Plans []Plan

	// DefaultMaxProducts is returned by PlanLimits for unrecognized plan ids.
	// An intentional fallback so a cache miss never hard-denies access.
	DefaultMaxProducts int
}

// Catalog resolves plan names, provider plan ids and feature limits for a
// single mode. Reverse lookups use indexes built once at construction.
type Catalog struct {
	mode               domain.Mode
	plans              map[string]Plan // key: name_cycle, lowercased
	byProviderID       map[string]Plan // standard id -> plan
	byFounderID        map[string]Plan // founder id -> owning plan
	defaultMaxProducts int
	logger             *slog.Logger
}

// New builds a Catalog and verifies its invariants: provider plan ids must be
// unique within the mode, founder ids must be unique and must not collide
// with standard ids.
func New(cfg Config, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{
		mode:               cfg.Mode,
		plans:              make(map[string]Plan, len(cfg.Plans)),
		byProviderID:       make(map[string]Plan, len(cfg.Plans)),
		byFounderID:        make(map[string]Plan, len(cfg.Plans)),
		defaultMaxProducts: cfg.DefaultMaxProducts,
		logger:             logger,
	}

	for _, p := range cfg.Plans {
		if p.Name == "" || p.ProviderPlanID == "" {
			return nil, fmt.Errorf("catalog: plan %q/%q missing name or provider plan id", p.Name, p.Cycle)
		}
		if p.Cycle != CycleMonthly && p.Cycle != CycleYearly {
			return nil, fmt.Errorf("catalog: plan %q has invalid cycle %q", p.Name, p.Cycle)
		}
		if _, dup := c.plans[p.key()]; dup {
			return nil, fmt.Errorf("catalog: duplicate plan entry %q", p.key())
		}
		if _, dup := c.byProviderID[p.ProviderPlanID]; dup {
			return nil, fmt.Errorf("catalog: duplicate provider plan id %q", p.ProviderPlanID)
		}

		c.plans[p.key()] = p
		c.byProviderID[p.ProviderPlanID] = p

		if p.FounderProviderPlanID != "" {
			if _, dup := c.byFounderID[p.FounderProviderPlanID]; dup {
				return nil, fmt.Errorf("catalog: duplicate founder plan id %q", p.FounderProviderPlanID)
			}
			c.byFounderID[p.FounderProviderPlanID] = p
		}
	}

	// Founder ids must not shadow standard ids.
	for id := range c.byFounderID {
		if _, clash := c.byProviderID[id]; clash {
			return nil, fmt.Errorf("catalog: plan id %q is both standard and founder", id)
		}
	}

	return c, nil
}

// Mode returns the mode this catalog is scoped to.
func (c *Catalog) Mode() domain.Mode {
	return c.mode
}

// ResolveProviderPlanID resolves a (planName, billingCycle) pair to the
// standard provider plan id. A miss is a hard failure: this id feeds billing,
// so there is never a silent default.
func (c *Catalog) ResolveProviderPlanID(planName, billingCycle string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(planName)) + "_" + strings.ToLower(strings.TrimSpace(billingCycle))
	p, ok := c.plans[key]
	if !ok {
		return "", domain.ErrPlanNotFound
	}
	return p.ProviderPlanID, nil
}

// ApplySwap substitutes the founder plan id for a plan-swap coupon.
// For any other coupon kind, or when the plan has no founder variant, the
// input id is returned unchanged.
func (c *Catalog) ApplySwap(providerPlanID string, coupon *Coupon) string {
	if coupon == nil || coupon.Kind != PlanSwap {
		return providerPlanID
	}
	p, ok := c.byProviderID[providerPlanID]
	if !ok || p.FounderProviderPlanID == "" {
		return providerPlanID
	}
	return p.FounderProviderPlanID
}

// SwapTargets returns every founder plan id a plan-swap coupon can map to in
// this mode. Used to count redemptions of capped plan-swap coupons.
func (c *Catalog) SwapTargets(coupon *Coupon) []string {
	if coupon == nil || coupon.Kind != PlanSwap {
		return nil
	}
	ids := make([]string, 0, len(c.byFounderID))
	for id := range c.byFounderID {
		ids = append(ids, id)
	}
	return ids
}

// PlanLimits reports the feature limits for a provider plan id, standard or
// founder. Unknown ids fall back to the configured default cap; the fallback
// is deliberate (never hard-deny on a stale id) and is logged.
func (c *Catalog) PlanLimits(providerPlanID string) domain.FeatureLimits {
	if p, ok := c.byProviderID[providerPlanID]; ok {
		return domain.FeatureLimits{MaxProducts: p.MaxProducts}
	}
	if p, ok := c.byFounderID[providerPlanID]; ok {
		return domain.FeatureLimits{MaxProducts: p.MaxProducts}
	}

	c.logger.Warn("plan id not in catalog, using default limits",
		slog.String("provider_plan_id", providerPlanID),
		slog.String("mode", c.mode.String()),
		slog.Int("default_max_products", c.defaultMaxProducts))
	return domain.FeatureLimits{MaxProducts: c.defaultMaxProducts}
}

// Plans returns the configured plan entries. Used to seed the plans table.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	return out
}
