// Package api contains the JSON handlers for the entitlement core.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/frostify/frostify/internal/domain"
	"github.com/frostify/frostify/internal/handler"
	"github.com/frostify/frostify/internal/router"
)

// EntitlementHandler exposes the entitlement service over HTTP.
type EntitlementHandler struct {
	service domain.EntitlementService
	mode    domain.Mode
	logger  *slog.Logger
}

// NewEntitlementHandler creates a new entitlement handler
func NewEntitlementHandler(service domain.EntitlementService, mode domain.Mode, logger *slog.Logger) *EntitlementHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntitlementHandler{
		service: service,
		mode:    mode,
		logger:  logger,
	}
}

// RegisterRoutes registers the public API routes.
func (h *EntitlementHandler) RegisterRoutes(r *router.Router) {
	r.Post("/api/coupons/validate", h.ValidateCoupon)
	r.Post("/api/checkout/resolve", h.ResolveCheckout)
	r.Post("/api/checkout/subscription", h.StartCheckout)
	r.Post("/api/payments/verify", h.VerifyPayment)
	r.Get("/api/entitlement/{userID}", h.CheckEntitlement)
	r.Post("/api/entitlement/{userID}/reconcile", h.Reconcile)
	r.Get("/api/plans/limits", h.PlanLimits)
}

// couponResponse is returned by ValidateCoupon for both outcomes. Statically
// invalid coupons are a normal answer for the checkout form, not an HTTP error.
type couponResponse struct {
	Valid       bool   `json:"valid"`
	Kind        string `json:"kind,omitempty"`
	Description string `json:"description,omitempty"`
	PercentOff  int    `json:"percent_off,omitempty"`
	MaxDiscount int    `json:"max_discount,omitempty"`
	TrialDays   int    `json:"trial_days,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// ValidateCoupon handles POST /api/coupons/validate
func (h *EntitlementHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	v, err := h.service.ValidateCoupon(r.Context(), req.Code)
	if err != nil {
		if reason := couponRejection(err); reason != "" {
			handler.RespondJSON(w, http.StatusOK, couponResponse{Reason: reason})
			return
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, couponResponse{
		Valid:       true,
		Kind:        v.Kind,
		Description: v.Description,
		PercentOff:  v.PercentOff,
		MaxDiscount: v.MaxDiscount,
		TrialDays:   v.TrialDays,
	})
}

// couponRejection returns the rejection reason for expected coupon failures,
// or "" when the error is not one of them.
func couponRejection(err error) string {
	switch kind := domain.ErrorKind(err); kind {
	case domain.KindCouponInvalid, domain.KindCouponExpired, domain.KindCouponLimitReached:
		return kind
	default:
		return ""
	}
}

type checkoutRequest struct {
	UserID       string `json:"user_id,omitempty"`
	PlanName     string `json:"plan_name"`
	BillingCycle string `json:"billing_cycle"`
	CouponCode   string `json:"coupon_code,omitempty"`
}

// ResolveCheckout handles POST /api/checkout/resolve
// It reports the provider-facing parameters without creating anything.
func (h *EntitlementHandler) ResolveCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	params, err := h.service.ResolveCheckoutPlan(r.Context(), req.PlanName, req.BillingCycle, req.CouponCode)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := struct {
		ProviderPlanID string `json:"provider_plan_id"`
		TotalCount     int    `json:"total_count"`
		OfferID        string `json:"offer_id,omitempty"`
		StartAt        int64  `json:"start_at,omitempty"`
		CouponUsed     string `json:"coupon_used,omitempty"`
	}{
		ProviderPlanID: params.ProviderPlanID,
		TotalCount:     params.TotalCount,
		OfferID:        params.OfferID,
		CouponUsed:     params.CouponUsed,
	}
	if !params.StartAt.IsZero() {
		resp.StartAt = params.StartAt.Unix()
	}
	handler.RespondJSON(w, http.StatusOK, resp)
}

// StartCheckout handles POST /api/checkout/subscription
// It creates the subscription on the provider and returns what the
// client-side payment widget needs to open.
func (h *EntitlementHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "", "user_id must be a UUID"))
		return
	}

	session, err := h.service.StartCheckout(r.Context(), userID, req.PlanName, req.BillingCycle, req.CouponCode)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, struct {
		SubscriptionID string `json:"subscription_id"`
		KeyID          string `json:"key_id"`
		ProviderPlanID string `json:"provider_plan_id"`
	}{
		SubscriptionID: session.SubscriptionID,
		KeyID:          session.KeyID,
		ProviderPlanID: session.ProviderPlanID,
	})
}

// VerifyPayment handles POST /api/payments/verify
func (h *EntitlementHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID      string `json:"razorpay_payment_id"`
		SubscriptionID string `json:"razorpay_subscription_id"`
		Signature      string `json:"razorpay_signature"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.service.VerifyPayment(r.Context(), req.PaymentID, req.SubscriptionID, req.Signature); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, struct {
		Verified bool `json:"verified"`
	}{Verified: true})
}

// decisionResponse is the JSON shape of an entitlement decision.
type decisionResponse struct {
	Granted        bool   `json:"granted"`
	PlanName       string `json:"plan_name,omitempty"`
	ProviderPlanID string `json:"provider_plan_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
	CheckedAt      int64  `json:"checked_at"`
}

func decisionJSON(d *domain.EntitlementDecision) decisionResponse {
	return decisionResponse{
		Granted:        d.Granted,
		PlanName:       d.PlanName,
		ProviderPlanID: d.ProviderPlanID,
		Reason:         d.Reason,
		CheckedAt:      time.Now().Unix(),
	}
}

// CheckEntitlement handles GET /api/entitlement/{userID}
// Denials are 200 responses with granted=false; only store failures error.
func (h *EntitlementHandler) CheckEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "", "user id must be a UUID"))
		return
	}

	decision, err := h.service.CheckEntitlement(r.Context(), userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, decisionJSON(decision))
}

// Reconcile handles POST /api/entitlement/{userID}/reconcile
// The body may carry a provider subscription id hint for the fallback path.
func (h *EntitlementHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "", "user id must be a UUID"))
		return
	}

	var req struct {
		ProviderSubscriptionID string `json:"provider_subscription_id,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := handler.DecodeJSON(r, &req); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
	}

	decision, err := h.service.ReconcileAndAuthorize(r.Context(), userID, req.ProviderSubscriptionID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, decisionJSON(decision))
}

// PlanLimits handles GET /api/plans/limits?plan_id=plan_xxx&mode=test
// The mode param is optional; the process serves one mode, so a different
// value means the client is talking to the wrong deployment.
func (h *EntitlementHandler) PlanLimits(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("plan_id")
	if planID == "" {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "", "plan_id is required"))
		return
	}

	if mode := r.URL.Query().Get("mode"); mode != "" && mode != h.mode.String() {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "",
			"mode %q is not served here; this deployment runs in %s mode", mode, h.mode))
		return
	}

	limits, err := h.service.GetFeatureLimit(r.Context(), planID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, struct {
		MaxProducts int `json:"max_products"`
	}{MaxProducts: limits.MaxProducts})
}
