package payment_controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njangir/acing-interview/events"
	"github.com/njangir/acing-interview/models/booking_models"
	"github.com/njangir/acing-interview/models/shared_models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRazorpay records calls so tests can assert which provider
// operations a handler reached.
type fakeRazorpay struct {
	verifyResult bool
	verifyCalls  int
	refundErr    error
	refundCalls  int
	orderResp    map[string]interface{}
	orderErr     error
}

func (f *fakeRazorpay) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return f.orderResp, f.orderErr
}

func (f *fakeRazorpay) Refund(paymentID string, amount int64) error {
	f.refundCalls++
	return f.refundErr
}

func (f *fakeRazorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	f.verifyCalls++
	return f.verifyResult
}

func setupRouter(pc *PaymentController, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	if userID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", userID.String())
			c.Next()
		})
	}
	r.POST("/payments/order", pc.CreateOrder)
	r.POST("/payments/verify", pc.VerifyPayment)
	r.POST("/admin/payments/:booking_id/refund", pc.ProcessRefund)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderUnauthenticated(t *testing.T) {
	pc := NewPaymentController(nil, &fakeRazorpay{}, events.NewBus(), "rzp_test_key")
	r := setupRouter(pc, uuid.Nil)

	w := postJSON(r, "/payments/order", `{"amount": 50000, "booking_id": "`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	pc := NewPaymentController(nil, &fakeRazorpay{}, events.NewBus(), "rzp_test_key")
	r := setupRouter(pc, uuid.New())

	tests := []struct {
		name string
		body string
	}{
		{"missing amount", `{"booking_id": "` + uuid.NewString() + `"}`},
		{"zero amount", `{"amount": 0, "booking_id": "` + uuid.NewString() + `"}`},
		{"negative amount", `{"amount": -100, "booking_id": "` + uuid.NewString() + `"}`},
		{"missing booking id", `{"amount": 50000}`},
		{"malformed booking id", `{"amount": 50000, "booking_id": "not-a-uuid"}`},
		{"not json", `not-json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/payments/order", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestVerifyPaymentUnauthenticated(t *testing.T) {
	pc := NewPaymentController(nil, &fakeRazorpay{verifyResult: true}, events.NewBus(), "rzp_test_key")
	r := setupRouter(pc, uuid.Nil)

	body := fmt.Sprintf(`{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "sig", "booking_id": %q}`, uuid.NewString())
	w := postJSON(r, "/payments/verify", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	fake := &fakeRazorpay{verifyResult: true}
	pc := NewPaymentController(nil, fake, events.NewBus(), "rzp_test_key")
	r := setupRouter(pc, uuid.New())

	tests := []struct {
		name string
		body string
	}{
		{"missing order id", `{"razorpay_payment_id": "pay_1", "razorpay_signature": "sig", "booking_id": "` + uuid.NewString() + `"}`},
		{"missing payment id", `{"razorpay_order_id": "order_1", "razorpay_signature": "sig", "booking_id": "` + uuid.NewString() + `"}`},
		{"missing signature", `{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "booking_id": "` + uuid.NewString() + `"}`},
		{"malformed booking id", `{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "sig", "booking_id": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/payments/verify", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	// Binding failures never reach the signature check.
	assert.Zero(t, fake.verifyCalls)
}

// A tampered signature must be rejected before any booking read or
// write; the nil pool would panic if the handler went further.
func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	fake := &fakeRazorpay{verifyResult: false}
	pc := NewPaymentController(nil, fake, events.NewBus(), "rzp_test_key")
	r := setupRouter(pc, uuid.New())

	body := fmt.Sprintf(`{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "deadbeef", "booking_id": %q}`, uuid.NewString())
	w := postJSON(r, "/payments/verify", body)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, fake.verifyCalls)
	assert.Contains(t, w.Body.String(), ErrSignatureMismatch.Error())
}

func TestProcessRefundInvalidBookingID(t *testing.T) {
	fake := &fakeRazorpay{}
	pc := NewPaymentController(nil, fake, events.NewBus(), "rzp_test_key")
	r := setupRouter(pc, uuid.New())

	w := postJSON(r, "/admin/payments/not-a-uuid/refund", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, fake.refundCalls)
}

// fakeBookingStore holds one booking and replicates the guarded-update
// semantics of the pgx-backed store.
type fakeBookingStore struct {
	booking         *booking_models.Booking
	confirmCalls    int
	refundWrites    int
	markRefundedErr error
}

func (f *fakeBookingStore) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*booking_models.Booking, error) {
	if f.booking == nil || f.booking.ID != bookingID {
		return nil, booking_models.ErrBookingNotFound
	}
	snapshot := *f.booking
	return &snapshot, nil
}

func (f *fakeBookingStore) AttachPaymentOrder(ctx context.Context, bookingID uuid.UUID, orderID string, amount int64) error {
	f.booking.OrderID = &orderID
	f.booking.Amount = amount
	return nil
}

func (f *fakeBookingStore) MarkPaymentConfirmed(ctx context.Context, bookingID uuid.UUID, transactionID string) error {
	f.confirmCalls++
	b := f.booking
	if b == nil || b.ID != bookingID ||
		b.PaymentStatus == shared_models.PaymentStatusPaid ||
		shared_models.IsTerminalStatus(b.Status) {
		return booking_models.ErrBookingNotUpdatable
	}
	b.Status = shared_models.BookingStatusAccepted
	b.PaymentStatus = shared_models.PaymentStatusPaid
	b.TransactionID = &transactionID
	return nil
}

func (f *fakeBookingStore) MarkRefunded(ctx context.Context, bookingID uuid.UUID) error {
	f.refundWrites++
	if f.markRefundedErr != nil {
		return f.markRefundedErr
	}
	b := f.booking
	if b == nil || b.ID != bookingID || b.PaymentStatus != shared_models.PaymentStatusPaid {
		return booking_models.ErrBookingNotUpdatable
	}
	b.Status = shared_models.BookingStatusCancelled
	b.PaymentStatus = shared_models.PaymentStatusRefunded
	b.RefundRequested = false
	return nil
}

func pendingBooking(userID uuid.UUID) *booking_models.Booking {
	orderID := "order_1"
	return &booking_models.Booking{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        shared_models.BookingStatusPendingPayment,
		PaymentStatus: shared_models.PaymentStatusPending,
		OrderID:       &orderID,
		Amount:        50000,
	}
}

func paidBooking(userID uuid.UUID) *booking_models.Booking {
	b := pendingBooking(userID)
	txn := "pay_1"
	b.Status = shared_models.BookingStatusAccepted
	b.PaymentStatus = shared_models.PaymentStatusPaid
	b.TransactionID = &txn
	return b
}

func verifyBody(bookingID uuid.UUID) string {
	return fmt.Sprintf(`{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "sig", "booking_id": %q}`, bookingID)
}

// Re-delivering the same verified confirmation must succeed without a
// second write and leave the booking in the same final state.
func TestVerifyPaymentIdempotent(t *testing.T) {
	userID := uuid.New()
	store := &fakeBookingStore{booking: pendingBooking(userID)}
	pc := &PaymentController{Store: store, Razorpay: &fakeRazorpay{verifyResult: true}, Bus: events.NewBus(), KeyID: "rzp_test_key"}
	r := setupRouter(pc, userID)

	w := postJSON(r, "/payments/verify", verifyBody(store.booking.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.confirmCalls)
	assert.Equal(t, shared_models.BookingStatusAccepted, store.booking.Status)
	assert.Equal(t, shared_models.PaymentStatusPaid, store.booking.PaymentStatus)
	require.NotNil(t, store.booking.TransactionID)
	assert.Equal(t, "pay_1", *store.booking.TransactionID)

	w = postJSON(r, "/payments/verify", verifyBody(store.booking.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, 1, store.confirmCalls)
	assert.Equal(t, shared_models.PaymentStatusPaid, store.booking.PaymentStatus)
	assert.Equal(t, "pay_1", *store.booking.TransactionID)

	pc.Bus.Wait()
}

func TestProcessRefundRequiresPaid(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name    string
		booking *booking_models.Booking
	}{
		{"payment pending", pendingBooking(userID)},
		{"paid without transaction id", func() *booking_models.Booking {
			b := paidBooking(userID)
			b.TransactionID = nil
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRazorpay{}
			store := &fakeBookingStore{booking: tt.booking}
			pc := &PaymentController{Store: store, Razorpay: fake, Bus: events.NewBus(), KeyID: "rzp_test_key"}
			r := setupRouter(pc, userID)

			w := postJSON(r, "/admin/payments/"+tt.booking.ID.String()+"/refund", "")
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Contains(t, w.Body.String(), ErrNotRefundable.Error())
			assert.Zero(t, fake.refundCalls)
			assert.Zero(t, store.refundWrites)
		})
	}
}

// A provider rejection must leave the booking untouched: no local
// write, paid status intact, so the refund can be retried.
func TestProcessRefundProviderFailure(t *testing.T) {
	userID := uuid.New()
	fake := &fakeRazorpay{refundErr: fmt.Errorf("gateway timeout")}
	store := &fakeBookingStore{booking: paidBooking(userID)}
	pc := &PaymentController{Store: store, Razorpay: fake, Bus: events.NewBus(), KeyID: "rzp_test_key"}
	r := setupRouter(pc, userID)

	w := postJSON(r, "/admin/payments/"+store.booking.ID.String()+"/refund", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 1, fake.refundCalls)
	assert.Zero(t, store.refundWrites)
	assert.Equal(t, shared_models.PaymentStatusPaid, store.booking.PaymentStatus)
	assert.Equal(t, shared_models.BookingStatusAccepted, store.booking.Status)
}

func TestProcessRefundSuccess(t *testing.T) {
	userID := uuid.New()
	fake := &fakeRazorpay{}
	store := &fakeBookingStore{booking: paidBooking(userID)}
	pc := &PaymentController{Store: store, Razorpay: fake, Bus: events.NewBus(), KeyID: "rzp_test_key"}
	r := setupRouter(pc, userID)

	w := postJSON(r, "/admin/payments/"+store.booking.ID.String()+"/refund", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fake.refundCalls)
	assert.Equal(t, shared_models.BookingStatusCancelled, store.booking.Status)
	assert.Equal(t, shared_models.PaymentStatusRefunded, store.booking.PaymentStatus)
	assert.False(t, store.booking.RefundRequested)

	pc.Bus.Wait()
}

// A refund whose local write already happened reports success instead
// of failing the retry.
func TestProcessRefundAlreadyRecorded(t *testing.T) {
	userID := uuid.New()
	fake := &fakeRazorpay{}
	store := &fakeBookingStore{
		booking:         paidBooking(userID),
		markRefundedErr: booking_models.ErrBookingNotUpdatable,
	}
	pc := &PaymentController{Store: store, Razorpay: fake, Bus: events.NewBus(), KeyID: "rzp_test_key"}
	r := setupRouter(pc, userID)

	w := postJSON(r, "/admin/payments/"+store.booking.ID.String()+"/refund", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already recorded")
}
