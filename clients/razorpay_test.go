package clients

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := NewRazorpayClient("rzp_test_key", "s3cret")

	expected := signPayload("s3cret", "order_1|pay_1")

	t.Run("ValidSignature", func(t *testing.T) {
		assert.True(t, client.VerifyPaymentSignature("order_1", "pay_1", expected))
	})

	t.Run("TamperedSignature", func(t *testing.T) {
		assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", "deadbeef"+expected[8:]))
	})

	t.Run("SignatureForDifferentOrder", func(t *testing.T) {
		other := signPayload("s3cret", "order_2|pay_1")
		assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", other))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := signPayload("wrong", "order_1|pay_1")
		assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", other))
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		upper := ""
		for _, r := range expected {
			if r >= 'a' && r <= 'f' {
				upper += string(r - 32)
			} else {
				upper += string(r)
			}
		}
		assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", upper))
	})
}
