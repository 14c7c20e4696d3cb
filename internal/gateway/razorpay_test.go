package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_key_secret"
	orderID := "order_abc123"
	paymentID := "pay_def456"

	err := VerifySignature(secret, orderID, paymentID, sign(secret, orderID, paymentID))
	require.NoError(t, err)
}

func TestVerifySignatureMismatch(t *testing.T) {
	secret := "test_key_secret"

	cases := []struct {
		name      string
		signature string
	}{
		{"wrong secret", sign("other_secret", "order_abc", "pay_def")},
		{"wrong order id", sign(secret, "order_xyz", "pay_def")},
		{"wrong payment id", sign(secret, "order_abc", "pay_xyz")},
		{"garbage", "not-a-signature"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(secret, "order_abc", "pay_def", tc.signature)
			require.ErrorIs(t, err, ErrSignatureMismatch)
		})
	}
}
