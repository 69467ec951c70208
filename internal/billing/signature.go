package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/frostify/frostify/internal/domain"
)

// VerifyPaymentSignature checks the authenticity of a completed checkout.
// Razorpay signs payment_id + "|" + subscription_id with the key secret; the
// comparison is constant time and the error never reveals which input was
// wrong, to avoid leaking an oracle.
func VerifyPaymentSignature(paymentID, subscriptionID, signature, secret string) error {
	if paymentID == "" || subscriptionID == "" || signature == "" {
		return domain.ErrMissingParameters
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	return nil
}
