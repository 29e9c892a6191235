package payment_controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/clients"
	"github.com/njangir/acing-interview/events"
	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/booking_models"
	"github.com/njangir/acing-interview/models/shared_models"
	"github.com/njangir/acing-interview/utils"
)

// BookingStore is the slice of the booking model the payment flows
// touch. Production uses the pgx-backed store; tests substitute a fake
// the same way they do for RazorpayClientWrapper.
type BookingStore interface {
	GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*booking_models.Booking, error)
	AttachPaymentOrder(ctx context.Context, bookingID uuid.UUID, orderID string, amount int64) error
	MarkPaymentConfirmed(ctx context.Context, bookingID uuid.UUID, transactionID string) error
	MarkRefunded(ctx context.Context, bookingID uuid.UUID) error
}

type pgxBookingStore struct {
	db *pgxpool.Pool
}

func (s pgxBookingStore) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*booking_models.Booking, error) {
	return booking_models.GetBookingByID(ctx, s.db, bookingID)
}

func (s pgxBookingStore) AttachPaymentOrder(ctx context.Context, bookingID uuid.UUID, orderID string, amount int64) error {
	return booking_models.AttachPaymentOrder(ctx, s.db, bookingID, orderID, amount)
}

func (s pgxBookingStore) MarkPaymentConfirmed(ctx context.Context, bookingID uuid.UUID, transactionID string) error {
	return booking_models.MarkPaymentConfirmed(ctx, s.db, bookingID, transactionID)
}

func (s pgxBookingStore) MarkRefunded(ctx context.Context, bookingID uuid.UUID) error {
	return booking_models.MarkRefunded(ctx, s.db, bookingID)
}

// PaymentController owns the payment-side booking transitions: order
// creation, signature-verified confirmation, and refunds.
type PaymentController struct {
	Store    BookingStore
	Razorpay clients.RazorpayClientWrapper
	Bus      *events.Bus
	KeyID    string // public key handed to the checkout client
}

func NewPaymentController(db *pgxpool.Pool, razorpay clients.RazorpayClientWrapper, bus *events.Bus, keyID string) *PaymentController {
	return &PaymentController{Store: pgxBookingStore{db: db}, Razorpay: razorpay, Bus: bus, KeyID: keyID}
}

type CreateOrderRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"` // smallest currency unit
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

// CreateOrder handles POST /payments/order.
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	ctx := c.Request.Context()
	booking, err := pc.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		respondFetchError(c, err)
		return
	}
	if booking.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "booking does not belong to this user"})
		return
	}
	if shared_models.IsTerminalStatus(booking.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "booking can no longer be paid for"})
		return
	}

	orderData := map[string]interface{}{
		"amount":   req.Amount,
		"currency": "INR",
		"receipt":  booking.ID.String(),
		"notes": map[string]interface{}{
			"booking_id": booking.ID.String(),
			"user_id":    booking.UserID.String(),
		},
	}
	order, err := pc.Razorpay.CreateOrder(orderData)
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay order creation failed for booking %s: %v", booking.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider rejected the order"})
		return
	}
	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		logger.ErrorLogger.Errorf("Razorpay order response missing id for booking %s", booking.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid payment provider response"})
		return
	}

	if err := pc.Store.AttachPaymentOrder(ctx, booking.ID, orderID, req.Amount); err != nil {
		logger.ErrorLogger.Errorf("Failed to attach order %s to booking %s: %v", orderID, booking.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment order"})
		return
	}

	logger.InfoLogger.Infof("Order %s created for booking %s", orderID, booking.ID)
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "publicKey": pc.KeyID})
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

// VerifyPayment handles POST /payments/verify. The signature check runs
// before any booking mutation; re-delivery of an already-applied
// confirmation is a no-op success.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	if !pc.Razorpay.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		logger.WarnLogger.Warnf("Tampered payment signature for booking %s (order %s, payment %s)",
			bookingID, req.OrderID, req.PaymentID)
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": ErrSignatureMismatch.Error()})
		return
	}

	ctx := c.Request.Context()
	before, err := pc.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		respondFetchError(c, err)
		return
	}
	if before.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "booking does not belong to this user"})
		return
	}
	if before.OrderID != nil && *before.OrderID != req.OrderID {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrOrderMismatch.Error()})
		return
	}

	// Duplicate delivery of the same confirmation.
	if before.PaymentStatus == shared_models.PaymentStatusPaid {
		logger.InfoLogger.Infof("Payment for booking %s already confirmed, skipping", bookingID)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := pc.Store.MarkPaymentConfirmed(ctx, bookingID, req.PaymentID); err != nil {
		if errors.Is(err, booking_models.ErrBookingNotUpdatable) {
			// Lost a race with another delivery of the same confirmation.
			current, fetchErr := pc.Store.GetBookingByID(ctx, bookingID)
			if fetchErr == nil && current.PaymentStatus == shared_models.PaymentStatusPaid {
				c.JSON(http.StatusOK, gin.H{"success": true})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "booking can no longer accept payment"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to confirm payment for booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm payment"})
		return
	}

	pc.publishAfter(c, before)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ProcessRefund handles POST /admin/payments/:booking_id/refund. The
// provider call happens first; the local write is applied only on
// provider success and is all-or-nothing.
func (pc *PaymentController) ProcessRefund(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	ctx := c.Request.Context()
	before, err := pc.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		respondFetchError(c, err)
		return
	}

	if before.PaymentStatus != shared_models.PaymentStatusPaid || before.TransactionID == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": ErrNotRefundable.Error()})
		return
	}

	if err := pc.Razorpay.Refund(*before.TransactionID, before.Amount); err != nil {
		logger.ErrorLogger.Errorf("Razorpay refund failed for booking %s (txn %s): %v",
			bookingID, *before.TransactionID, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "payment provider rejected the refund"})
		return
	}

	if err := pc.Store.MarkRefunded(ctx, bookingID); err != nil {
		if errors.Is(err, booking_models.ErrBookingNotUpdatable) {
			// A previous refund attempt already applied the local write.
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "refund already recorded"})
			return
		}
		// The provider refunded but the local write failed; a retry of
		// this endpoint converges because the provider treats a repeat
		// refund of the same transaction as success.
		logger.ErrorLogger.Errorf("Refund applied at provider but local write failed for booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "refund recorded at provider; retry to finalize"})
		return
	}

	pc.publishAfter(c, before)
	logger.InfoLogger.Infof("Refund processed for booking %s (txn %s)", bookingID, *before.TransactionID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "refund processed"})
}

func (pc *PaymentController) publishAfter(c *gin.Context, before *booking_models.Booking) {
	after, err := pc.Store.GetBookingByID(c.Request.Context(), before.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to re-read booking %s after update: %v", before.ID, err)
		return
	}
	pc.Bus.PublishBookingChange(before, after)
}

func respondFetchError(c *gin.Context, err error) {
	if errors.Is(err, booking_models.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	logger.ErrorLogger.Errorf("Failed to fetch booking: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
}
