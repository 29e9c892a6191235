package clients

import (
	"strings"

	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// RazorpayClientWrapper provides an interface for Razorpay operations.
// This interface allows for easier testing by mocking Razorpay interactions.
type RazorpayClientWrapper interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	Refund(paymentID string, amount int64) error
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// RazorpayClient implements RazorpayClientWrapper using the actual Razorpay SDK.
type RazorpayClient struct {
	Client    *razorpay.Client
	keySecret string
}

// NewRazorpayClient creates and returns a new instance of RazorpayClient.
// It initializes the underlying Razorpay SDK client with the provided key ID and secret.
func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		Client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

// CreateOrder creates a new order in Razorpay.
// It takes a map of order data (e.g., amount, currency, receipt, notes) and
// returns the created order details or an error.
func (r *RazorpayClient) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return r.Client.Order.Create(data, nil)
}

// Refund issues a refund of the given amount (in the smallest currency
// unit) against a captured payment. A payment that has already been
// fully refunded is reported as success so that a retried refund after
// a crash converges instead of failing.
func (r *RazorpayClient) Refund(paymentID string, amount int64) error {
	_, err := r.Client.Payment.Refund(paymentID, int(amount), nil, nil)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "fully refunded") {
		return nil
	}
	return err
}

// VerifyPaymentSignature checks the checkout callback signature: a hex
// HMAC-SHA256 over "orderID|paymentID" keyed with the API secret. The
// comparison inside the SDK is constant time and case sensitive.
func (r *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, r.keySecret)
}
