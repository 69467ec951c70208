package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map to HTTP status codes and determine user-facing messages.
const (
	ECONFLICT     = "conflict"         // 409 - Resource conflict
	EINTERNAL     = "internal"         // 500 - Internal server error (hide details)
	EINVALID      = "invalid"          // 400 - Validation error (bad input)
	ENOTFOUND     = "not_found"        // 404 - Resource not found
	EUNAUTHORIZED = "unauthorized"     // 401 - Authentication required
	EFORBIDDEN    = "forbidden"        // 403 - Authenticated but not permitted
	EPAYMENT      = "payment_required" // 402 - Payment failed or required
	EUNAVAILABLE  = "unavailable"      // 503 - Upstream dependency unreachable
)

// Error kinds form the closed set of rejection reasons this core can produce.
// Callers match on kinds instead of parsing message text.
const (
	KindCouponInvalid        = "coupon_invalid"
	KindCouponExpired        = "coupon_expired"
	KindCouponLimitReached   = "coupon_limit_reached"
	KindOfferUnavailable     = "offer_unavailable"
	KindPlanNotFound         = "plan_not_found"
	KindNoSubscription       = "no_subscription"
	KindSubscriptionInactive = "subscription_inactive"
	KindSubscriptionExpired  = "subscription_expired"
	KindInvalidStatus        = "invalid_status"
	KindProviderUnavailable  = "provider_unavailable"
	KindInvalidSignature     = "invalid_signature"
	KindMissingParameters    = "missing_parameters"
	KindPersistenceFailure   = "persistence_failure"
)

// Error represents an application error with a code, kind and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error class (e.g., EINVALID, ENOTFOUND).
	Code string

	// Kind identifies the specific rejection reason from the closed kind set.
	// Empty for errors outside the entitlement decision surface.
	Kind string

	// Message is a human-readable error message safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g., "entitlement.check").
	// Used for debugging and logging, not shown to users.
	Op string

	// Err is the underlying error, if any. Used for error wrapping.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for nil or non-domain errors.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return EINTERNAL
}

// ErrorKind extracts the error kind from an error.
// Returns the empty string for nil, non-domain, or kindless errors.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// IsKind reports whether err carries the given error kind.
func IsKind(err error, kind string) bool {
	return ErrorKind(err) == kind
}

// ErrorMessage extracts a user-facing message from an error.
// For internal errors, returns a generic message to avoid leaking details.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}

	return "An internal error occurred. Please try again later."
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}

	return ""
}

// Errorf creates a new domain error with formatted message.
// Example: domain.Errorf(domain.EINVALID, domain.KindPlanNotFound, "catalog.resolve", "no plan for %s/%s", name, cycle)
func Errorf(code, kind, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a domain error code and operation.
// Preserves the underlying error for logging while providing structure.
// Returns nil if err is nil.
func WrapError(err error, code, kind, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Internal creates an internal error (wraps underlying error).
// The message shown to users will be generic; the underlying error is for logging.
func Internal(err error, op, message string) error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
