package domain

// Predeclared instances of the closed error-kind set. Singletons so callers
// can use errors.Is as well as ErrorKind matching.
var (
	ErrCouponInvalid      = &Error{Code: EINVALID, Kind: KindCouponInvalid, Message: "Invalid coupon"}
	ErrCouponExpired      = &Error{Code: EINVALID, Kind: KindCouponExpired, Message: "Coupon expired"}
	ErrCouponLimitReached = &Error{Code: ECONFLICT, Kind: KindCouponLimitReached, Message: "Coupon redemption limit reached"}
	ErrOfferUnavailable   = &Error{Code: ENOTFOUND, Kind: KindOfferUnavailable, Message: "Offer not available for the active mode"}
	ErrPlanNotFound       = &Error{Code: ENOTFOUND, Kind: KindPlanNotFound, Message: "Plan not found in configuration"}

	ErrNoSubscription       = &Error{Code: EPAYMENT, Kind: KindNoSubscription, Message: "No subscription found. Please upgrade to a paid plan."}
	ErrSubscriptionInactive = &Error{Code: EPAYMENT, Kind: KindSubscriptionInactive, Message: "Your subscription is inactive or canceled. Access denied."}
	ErrSubscriptionExpired  = &Error{Code: EPAYMENT, Kind: KindSubscriptionExpired, Message: "Your subscription period has ended. Please renew."}
	ErrInvalidStatus        = &Error{Code: EINTERNAL, Kind: KindInvalidStatus, Message: "Subscription has an unrecognized status"}

	ErrProviderUnavailable = &Error{Code: EUNAVAILABLE, Kind: KindProviderUnavailable, Message: "Payment provider is unreachable. Please try again."}
	ErrInvalidSignature    = &Error{Code: EUNAUTHORIZED, Kind: KindInvalidSignature, Message: "Payment verification failed"}
	ErrMissingParameters   = &Error{Code: EINVALID, Kind: KindMissingParameters, Message: "Missing required parameters"}
	ErrPersistenceFailure  = &Error{Code: EINTERNAL, Kind: KindPersistenceFailure, Message: "Failed to persist subscription state"}
)
