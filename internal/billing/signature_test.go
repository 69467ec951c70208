package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostify/frostify/internal/domain"
)

func signPayment(paymentID, subscriptionID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	const (
		paymentID      = "pay_29QQoUBi66xm2f"
		subscriptionID = "sub_00000000000001"
		secret         = "test_key_secret"
	)
	valid := signPayment(paymentID, subscriptionID, secret)

	tests := []struct {
		name           string
		paymentID      string
		subscriptionID string
		signature      string
		secret         string
		wantKind       string
	}{
		{
			name:           "valid signature",
			paymentID:      paymentID,
			subscriptionID: subscriptionID,
			signature:      valid,
			secret:         secret,
		},
		{
			name:           "tampered signature",
			paymentID:      paymentID,
			subscriptionID: subscriptionID,
			signature:      valid[:len(valid)-1] + "0",
			wantKind:       domain.KindInvalidSignature,
			secret:         secret,
		},
		{
			name:           "signature for different payment",
			paymentID:      "pay_other",
			subscriptionID: subscriptionID,
			signature:      valid,
			secret:         secret,
			wantKind:       domain.KindInvalidSignature,
		},
		{
			name:           "wrong secret",
			paymentID:      paymentID,
			subscriptionID: subscriptionID,
			signature:      valid,
			secret:         "live_key_secret",
			wantKind:       domain.KindInvalidSignature,
		},
		{
			name:           "missing payment id",
			paymentID:      "",
			subscriptionID: subscriptionID,
			signature:      valid,
			secret:         secret,
			wantKind:       domain.KindMissingParameters,
		},
		{
			name:           "missing subscription id",
			paymentID:      paymentID,
			subscriptionID: "",
			signature:      valid,
			secret:         secret,
			wantKind:       domain.KindMissingParameters,
		},
		{
			name:           "missing signature",
			paymentID:      paymentID,
			subscriptionID: subscriptionID,
			signature:      "",
			secret:         secret,
			wantKind:       domain.KindMissingParameters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPaymentSignature(tt.paymentID, tt.subscriptionID, tt.signature, tt.secret)
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, tt.wantKind))
		})
	}
}

func TestVerifyPaymentSignature_NoMismatchDetail(t *testing.T) {
	// The rejection message must not say which input was wrong.
	err := VerifyPaymentSignature("pay_x", "sub_y", "bogus", "secret")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pay_x")
	assert.NotContains(t, err.Error(), "sub_y")
	assert.NotContains(t, err.Error(), "bogus")
}
