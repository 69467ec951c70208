package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frostify/frostify/internal/billing"
	"github.com/frostify/frostify/internal/catalog"
	"github.com/frostify/frostify/internal/domain"
	"github.com/frostify/frostify/internal/telemetry"
)

// defaultTotalCount is the open-ended subscription length in billing cycles
// (10 years of monthly charges; auto-renewal in practice).
const defaultTotalCount = 120

// Founder subscriptions run for exactly one paid year.
const (
	founderMonthlyCount = 12
	founderYearlyCount  = 1
)

// syncBatchSize is how many recent provider subscriptions one sync run pulls.
const syncBatchSize = 100

// EntitlementConfig wires an entitlement service.
type EntitlementConfig struct {
	Store    domain.SubscriptionStore
	Provider billing.Provider
	Catalog  *catalog.Catalog
	Coupons  *catalog.Registry

	// KeyID is handed to the client-side payment widget.
	// KeySecret verifies payment signatures. Both are mode-scoped.
	KeyID     string
	KeySecret string

	// Metrics may be nil (e.g. in tests).
	Metrics *telemetry.BusinessMetrics
	Logger  *slog.Logger

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// entitlementService implements domain.EntitlementService.
type entitlementService struct {
	store    domain.SubscriptionStore
	provider billing.Provider
	catalog  *catalog.Catalog
	coupons  *catalog.Registry
	usage    *UsageCounter

	keyID     string
	keySecret string

	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewEntitlementService creates a new EntitlementService instance.
func NewEntitlementService(cfg EntitlementConfig) (domain.EntitlementService, error) {
	if cfg.Store == nil || cfg.Provider == nil || cfg.Catalog == nil || cfg.Coupons == nil {
		return nil, fmt.Errorf("entitlement service: store, provider, catalog and coupons are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &entitlementService{
		store:     cfg.Store,
		provider:  cfg.Provider,
		catalog:   cfg.Catalog,
		coupons:   cfg.Coupons,
		usage:     NewUsageCounter(cfg.Store, cfg.Catalog),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		metrics:   cfg.Metrics,
		logger:    logger,
		now:       now,
	}, nil
}

// ValidateCoupon checks a coupon code against the registry and, for capped
// coupons, against current usage. Read-only.
func (s *entitlementService) ValidateCoupon(ctx context.Context, code string) (*domain.CouponValidation, error) {
	coupon, err := s.lookupCoupon(ctx, code)
	if err != nil {
		s.countCoupon(code, domain.ErrorKind(err))
		return nil, err
	}

	s.countCoupon(code, "valid")
	return &domain.CouponValidation{
		Valid:       true,
		Kind:        string(coupon.Kind),
		Description: coupon.Description,
		PercentOff:  coupon.PercentOff,
		MaxDiscount: coupon.MaxDiscount,
		TrialDays:   coupon.TrialDays,
	}, nil
}

// lookupCoupon runs the full coupon validation: static rules first, then the
// redemption cap via UsageCounter.
func (s *entitlementService) lookupCoupon(ctx context.Context, code string) (*catalog.Coupon, error) {
	coupon, err := s.coupons.Lookup(code, s.now())
	if err != nil {
		return nil, err
	}

	if coupon.UsageLimit > 0 {
		usage, err := s.usage.CountUsage(ctx, coupon)
		if err != nil {
			return nil, err
		}
		if usage >= coupon.UsageLimit {
			s.logger.Info("coupon redemption limit reached",
				slog.String("code", coupon.Code),
				slog.Int("usage", usage),
				slog.Int("limit", coupon.UsageLimit))
			return nil, domain.ErrCouponLimitReached
		}
	}

	return coupon, nil
}

// ResolveCheckoutPlan composes plan resolution, coupon validation and the
// founder swap into provider-facing checkout parameters.
func (s *entitlementService) ResolveCheckoutPlan(ctx context.Context, planName, billingCycle, couponCode string) (*domain.CheckoutParams, error) {
	params, err := s.resolveCheckout(ctx, planName, billingCycle, couponCode)
	if err != nil {
		s.countResolution(planName, billingCycle, domain.ErrorKind(err))
		return nil, err
	}
	s.countResolution(planName, billingCycle, "ok")
	return params, nil
}

func (s *entitlementService) resolveCheckout(ctx context.Context, planName, billingCycle, couponCode string) (*domain.CheckoutParams, error) {
	providerPlanID, err := s.catalog.ResolveProviderPlanID(planName, billingCycle)
	if err != nil {
		return nil, err
	}

	params := &domain.CheckoutParams{
		ProviderPlanID: providerPlanID,
		TotalCount:     defaultTotalCount,
		PlanName:       planName,
		BillingCycle:   billingCycle,
	}

	if couponCode == "" {
		return params, nil
	}

	coupon, err := s.lookupCoupon(ctx, couponCode)
	if err != nil {
		return nil, err
	}
	params.CouponUsed = coupon.Code

	switch coupon.Kind {
	case catalog.PlanSwap:
		params.ProviderPlanID = s.catalog.ApplySwap(providerPlanID, coupon)
		if billingCycle == catalog.CycleYearly {
			params.TotalCount = founderYearlyCount
		} else {
			params.TotalCount = founderMonthlyCount
		}

	case catalog.OfferApply:
		offerID, err := coupon.OfferIDFor(s.catalog.Mode())
		if err != nil {
			return nil, err
		}
		params.OfferID = offerID

	case catalog.TrialPeriod:
		params.StartAt = s.now().AddDate(0, 0, coupon.TrialDays)
	}

	return params, nil
}

// StartCheckout resolves checkout parameters and creates the subscription on
// the provider. The returned session is what the client payment widget needs;
// the resulting subscription row arrives later via webhook.
func (s *entitlementService) StartCheckout(ctx context.Context, userID uuid.UUID, planName, billingCycle, couponCode string) (*domain.CheckoutSession, error) {
	params, err := s.ResolveCheckoutPlan(ctx, planName, billingCycle, couponCode)
	if err != nil {
		return nil, err
	}

	couponUsed := params.CouponUsed
	if couponUsed == "" {
		couponUsed = "none"
	}

	start := s.now()
	sub, err := s.provider.CreateSubscription(ctx, billing.CreateSubscriptionParams{
		PlanID:         params.ProviderPlanID,
		TotalCount:     params.TotalCount,
		CustomerNotify: true,
		OfferID:        params.OfferID,
		StartAt:        params.StartAt,
		Notes: map[string]string{
			"user_id":       userID.String(),
			"coupon_used":   couponUsed,
			"plan_name":     params.PlanName,
			"billing_cycle": params.BillingCycle,
		},
	})
	s.observeProviderCall("create_subscription", start, err)
	if err != nil {
		s.countCheckout("provider_error")
		return nil, err
	}

	s.countCheckout("ok")
	s.logger.Info("checkout subscription created",
		slog.String("user_id", userID.String()),
		slog.String("provider_subscription_id", sub.ID),
		slog.String("provider_plan_id", params.ProviderPlanID),
		slog.String("coupon", couponUsed))

	return &domain.CheckoutSession{
		SubscriptionID: sub.ID,
		KeyID:          s.keyID,
		ProviderPlanID: params.ProviderPlanID,
	}, nil
}

// VerifyPayment checks the authenticity of a completed checkout with the
// mode-scoped key secret.
func (s *entitlementService) VerifyPayment(ctx context.Context, paymentID, subscriptionID, signature string) error {
	err := billing.VerifyPaymentSignature(paymentID, subscriptionID, signature, s.keySecret)
	if err != nil {
		s.countVerification(domain.ErrorKind(err))
		return err
	}
	s.countVerification("ok")
	return nil
}

// CheckEntitlement validates the user's stored subscription record.
func (s *entitlementService) CheckEntitlement(ctx context.Context, userID uuid.UUID) (*domain.EntitlementDecision, error) {
	sub, err := s.store.LatestEntitled(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := ValidateSubscription(sub, s.now())
	s.countEntitlement(decision)
	return decision, nil
}

// ReconcileAndAuthorize is the publish-gate decision. Local valid state wins;
// the provider is consulted only on a local miss or expiry and only when the
// caller supplies a provider subscription id hint; absence of both denies.
func (s *entitlementService) ReconcileAndAuthorize(ctx context.Context, userID uuid.UUID, providerSubscriptionID string) (*domain.EntitlementDecision, error) {
	sub, err := s.store.LatestEntitled(ctx, userID)
	if err != nil {
		return nil, err
	}

	local := ValidateSubscription(sub, s.now())
	if local.Granted {
		s.countEntitlement(local)
		return local, nil
	}

	if providerSubscriptionID == "" {
		s.countEntitlement(local)
		return local, nil
	}

	decision := s.consultProvider(ctx, userID, providerSubscriptionID)
	s.countEntitlement(decision)
	return decision, nil
}

// consultProvider fetches the hinted subscription directly from the provider
// and, if the provider says it is active, grants and best-effort persists the
// corrected state. The provider response is the ground truth for this call: a
// failed upsert is logged but never revokes the decision.
func (s *entitlementService) consultProvider(ctx context.Context, userID uuid.UUID, providerSubscriptionID string) *domain.EntitlementDecision {
	start := s.now()
	remote, err := s.provider.FetchSubscription(ctx, providerSubscriptionID)
	s.observeProviderCall("fetch_subscription", start, err)
	if err != nil {
		s.logger.Error("provider fetch failed during reconciliation",
			slog.String("user_id", userID.String()),
			slog.String("provider_subscription_id", providerSubscriptionID),
			slog.String("error", err.Error()))
		s.countFallback("provider_unavailable")
		return domain.Deny(domain.KindProviderUnavailable)
	}

	if !remote.Active() {
		s.logger.Info("provider reports subscription not active",
			slog.String("user_id", userID.String()),
			slog.String("provider_subscription_id", providerSubscriptionID),
			slog.String("provider_status", remote.Status))
		s.countFallback("inactive")
		return domain.Deny(domain.KindSubscriptionInactive)
	}

	decision := &domain.EntitlementDecision{
		Granted:        true,
		ProviderPlanID: remote.PlanID,
	}

	if plan := s.persistRemote(ctx, userID, remote); plan != nil {
		decision.PlanName = plan.Name
	}

	s.countFallback("granted")
	return decision
}

// persistRemote upserts the provider's view of a subscription, best effort.
// Returns the resolved plan record when the plan id is known locally.
func (s *entitlementService) persistRemote(ctx context.Context, userID uuid.UUID, remote *billing.Subscription) *domain.PlanRecord {
	plan, err := s.store.PlanByProviderPlanID(ctx, remote.PlanID)
	if err != nil {
		s.logFallbackUpsertFailure(userID, remote.ID, err)
		return nil
	}

	var planID *uuid.UUID
	if plan != nil {
		planID = &plan.ID
	}

	err = s.store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: remote.ID,
		Status:                 domain.StatusActive,
		PlanID:                 planID,
		CurrentPeriodStart:     remote.CurrentPeriodStart(),
		CurrentPeriodEnd:       remote.CurrentPeriodEnd(),
		Metadata:               map[string]string{"synced_from": "reconcile"},
	})
	if err != nil {
		s.logFallbackUpsertFailure(userID, remote.ID, err)
	}
	return plan
}

func (s *entitlementService) logFallbackUpsertFailure(userID uuid.UUID, providerSubscriptionID string, err error) {
	// The decision is already granted from the provider's answer; only the
	// local cache is stale now.
	s.logger.Error("best-effort subscription upsert failed",
		slog.String("user_id", userID.String()),
		slog.String("provider_subscription_id", providerSubscriptionID),
		slog.String("error", err.Error()))
	if s.metrics != nil {
		s.metrics.FallbackUpsertFailures.Inc()
	}
}

// GetFeatureLimit reports the feature caps for a provider plan id.
// Unknown ids get the catalog's documented default instead of a denial.
func (s *entitlementService) GetFeatureLimit(ctx context.Context, providerPlanID string) (*domain.FeatureLimits, error) {
	limits := s.catalog.PlanLimits(providerPlanID)
	return &limits, nil
}

// SyncSubscriptions pulls recent provider subscriptions and upserts them
// locally, repairing drift caused by missed webhooks. Rows that cannot be
// attributed to a user or a known plan are skipped and logged, never guessed.
func (s *entitlementService) SyncSubscriptions(ctx context.Context) (*domain.SyncReport, error) {
	start := s.now()
	subs, err := s.provider.ListSubscriptions(ctx, syncBatchSize)
	s.observeProviderCall("list_subscriptions", start, err)
	if err != nil {
		return nil, err
	}

	report := &domain.SyncReport{Fetched: len(subs)}
	for i := range subs {
		if s.syncOne(ctx, &subs[i]) {
			report.Upserted++
			s.countSynced("upserted")
		} else {
			report.Skipped++
			s.countSynced("skipped")
		}
	}

	s.logger.Info("provider sync finished",
		slog.String("mode", s.catalog.Mode().String()),
		slog.Int("fetched", report.Fetched),
		slog.Int("upserted", report.Upserted),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

// syncOne upserts a single provider subscription. Returns false when skipped.
func (s *entitlementService) syncOne(ctx context.Context, remote *billing.Subscription) bool {
	userID, err := uuid.Parse(remote.Notes["user_id"])
	if err != nil {
		s.logger.Warn("sync: no usable user_id in subscription notes",
			slog.String("provider_subscription_id", remote.ID))
		return false
	}

	status, ok := billing.MapProviderStatus(remote.Status)
	if !ok {
		s.logger.Warn("sync: unmapped provider status",
			slog.String("provider_subscription_id", remote.ID),
			slog.String("provider_status", remote.Status))
		return false
	}

	// Uncharged subscriptions have no billing period yet; nothing to validate.
	if remote.CurrentPeriodStartEpoch == 0 || remote.CurrentPeriodEndEpoch == 0 {
		s.logger.Info("sync: subscription has no billing period yet",
			slog.String("provider_subscription_id", remote.ID),
			slog.String("provider_status", remote.Status))
		return false
	}

	plan, err := s.store.PlanByProviderPlanID(ctx, remote.PlanID)
	if err != nil {
		s.logger.Error("sync: plan lookup failed",
			slog.String("provider_subscription_id", remote.ID),
			slog.String("error", err.Error()))
		return false
	}
	if plan == nil {
		s.logger.Warn("sync: provider plan id not in plans table",
			slog.String("provider_subscription_id", remote.ID),
			slog.String("provider_plan_id", remote.PlanID))
		return false
	}

	err = s.store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: remote.ID,
		Status:                 status,
		PlanID:                 &plan.ID,
		CurrentPeriodStart:     remote.CurrentPeriodStart(),
		CurrentPeriodEnd:       remote.CurrentPeriodEnd(),
		Metadata:               map[string]string{"synced_from": "sync", "coupon_used": remote.Notes["coupon_used"]},
	})
	if err != nil {
		s.logger.Error("sync: upsert failed",
			slog.String("provider_subscription_id", remote.ID),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// ----------------------------------------------------------------------------
// metric helpers (nil-safe so tests can run without a registry)

func (s *entitlementService) countCoupon(code, result string) {
	if s.metrics != nil {
		s.metrics.CouponValidations.WithLabelValues(catalog.NormalizeCode(code), result).Inc()
	}
}

func (s *entitlementService) countResolution(plan, cycle, result string) {
	if s.metrics != nil {
		s.metrics.CheckoutResolutions.WithLabelValues(plan, cycle, result).Inc()
	}
}

func (s *entitlementService) countCheckout(result string) {
	if s.metrics != nil {
		s.metrics.CheckoutsStarted.WithLabelValues(result).Inc()
	}
}

func (s *entitlementService) countVerification(result string) {
	if s.metrics != nil {
		s.metrics.PaymentVerifications.WithLabelValues(result).Inc()
	}
}

func (s *entitlementService) countEntitlement(decision *domain.EntitlementDecision) {
	if s.metrics == nil {
		return
	}
	reason := decision.Reason
	if decision.Granted {
		reason = "granted"
	}
	s.metrics.EntitlementChecks.WithLabelValues(reason).Inc()
}

func (s *entitlementService) countFallback(outcome string) {
	if s.metrics != nil {
		s.metrics.ReconcileFallbacks.WithLabelValues(outcome).Inc()
	}
}

func (s *entitlementService) countSynced(result string) {
	if s.metrics != nil {
		s.metrics.SyncedSubscriptions.WithLabelValues(result).Inc()
	}
}

func (s *entitlementService) observeProviderCall(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind != "" {
			status = derr.Kind
		}
	}
	s.metrics.ProviderCallDuration.WithLabelValues(op, status).Observe(s.now().Sub(start).Seconds())
}
