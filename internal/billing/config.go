package billing

import (
	"errors"
	"strings"
	"time"
)

// RazorpayConfig contains credentials and limits for the Razorpay provider.
// Credentials are mode-scoped: a config holds either the test pair or the
// live pair, never both.
type RazorpayConfig struct {
	// KeyID is the Razorpay key id (rzp_test_... or rzp_live_...).
	KeyID string

	// KeySecret signs API requests and is the HMAC secret for payment
	// signature verification.
	KeySecret string

	// Timeout bounds every provider API call.
	// Default: 5 seconds.
	Timeout time.Duration
}

// Validate checks that required configuration is present.
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return errors.New("razorpay: key id is required")
	}
	if c.KeySecret == "" {
		return errors.New("razorpay: key secret is required")
	}
	return nil
}

// IsTestMode returns true if using test mode credentials.
func (c *RazorpayConfig) IsTestMode() bool {
	return strings.HasPrefix(c.KeyID, "rzp_test_")
}
