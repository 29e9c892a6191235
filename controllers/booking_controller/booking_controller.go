package booking_controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/controllers/availability_controller"
	"github.com/njangir/acing-interview/events"
	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/booking_models"
	"github.com/njangir/acing-interview/models/shared_models"
	"github.com/njangir/acing-interview/utils"
)

// BookingController drives the booking lifecycle. Every mutation is one
// guarded update followed by a publish of the before/after snapshots.
type BookingController struct {
	DB       *pgxpool.Pool
	Bus      *events.Bus
	Resolver *availability_controller.AvailabilityController
}

func NewBookingController(db *pgxpool.Pool, bus *events.Bus, resolver *availability_controller.AvailabilityController) *BookingController {
	return &BookingController{DB: db, Bus: bus, Resolver: resolver}
}

type ReserveRequest struct {
	ServiceID   string `json:"service_id" binding:"required,uuid"`
	ServiceName string `json:"service_name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PayLater    bool   `json:"pay_later"`
}

// Reserve handles POST /bookings. The requested slot must still be in
// the resolver's result; the store's unique index is the backstop for
// the check-then-act window between that read and the insert.
func (bc *BookingController) Reserve(c *gin.Context) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := availability_controller.ValidateDate(req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service_id"})
		return
	}

	ctx := c.Request.Context()
	slots, err := bc.Resolver.Resolve(ctx, req.Date)
	if err != nil {
		logger.ErrorLogger.Errorf("Slot resolution failed during reserve for %s: %v", req.Date, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check slot availability"})
		return
	}
	available := false
	for _, slot := range slots {
		if slot == req.Time {
			available = true
			break
		}
	}
	if !available {
		c.JSON(http.StatusConflict, gin.H{"error": ErrSlotUnavailable.Error()})
		return
	}

	status := shared_models.BookingStatusPendingPayment
	paymentStatus := shared_models.PaymentStatusPending
	if req.PayLater {
		status = shared_models.BookingStatusPendingApproval
		paymentStatus = shared_models.PaymentStatusUnpaid
	}

	booking, err := booking_models.NewBooking(userID, req.Email, serviceID, req.ServiceName, req.Date, req.Time, status, paymentStatus)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build booking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	created, err := booking_models.CreateBooking(ctx, bc.DB, booking)
	if err != nil {
		if errors.Is(err, booking_models.ErrSlotTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": ErrSlotUnavailable.Error()})
			return
		}
		logger.ErrorLogger.Errorf("Failed to create booking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	bc.Bus.PublishBookingChange(nil, created)
	c.JSON(http.StatusCreated, gin.H{"booking": created})
}

// GetMyBookings handles GET /bookings/my.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	status := c.Query("status")
	if status != "" && !shared_models.IsValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := booking_models.GetBookingsByUser(c.Request.Context(), bc.DB, userID, status, page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// GetBooking handles GET /bookings/:booking_id. Owners and admins only.
func (bc *BookingController) GetBooking(c *gin.Context) {
	booking, ok := bc.fetchAuthorized(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Cancel handles PATCH /bookings/:booking_id/cancel for the owner and
// PATCH /admin/bookings/:booking_id/cancel for administrators.
func (bc *BookingController) Cancel(c *gin.Context) {
	before, ok := bc.fetchAuthorized(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := booking_models.MarkCancelled(ctx, bc.DB, before.ID); err != nil {
		if errors.Is(err, booking_models.ErrBookingNotUpdatable) {
			c.JSON(http.StatusConflict, gin.H{"error": "booking is already completed or cancelled"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", before.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}

	bc.publishAfter(c, before)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RequestRefund handles POST /bookings/:booking_id/request-refund.
func (bc *BookingController) RequestRefund(c *gin.Context) {
	before, ok := bc.fetchAuthorized(c)
	if !ok {
		return
	}

	if err := booking_models.SetRefundRequested(c.Request.Context(), bc.DB, before.ID); err != nil {
		if errors.Is(err, booking_models.ErrBookingNotUpdatable) {
			c.JSON(http.StatusConflict, gin.H{"error": "only paid, active bookings can request a refund"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to flag refund for booking %s: %v", before.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request refund"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ScheduleRequest struct {
	MeetingLink string `json:"meeting_link" binding:"required,url"`
}

// Schedule handles PATCH /admin/bookings/:booking_id/schedule.
func (bc *BookingController) Schedule(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meeting_link is required and must be a URL"})
		return
	}

	ctx := c.Request.Context()
	before, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		respondFetchError(c, err)
		return
	}

	if err := booking_models.MarkScheduled(ctx, bc.DB, bookingID, req.MeetingLink); err != nil {
		if errors.Is(err, booking_models.ErrBookingNotUpdatable) {
			c.JSON(http.StatusConflict, gin.H{"error": "cancelled or completed bookings cannot be scheduled"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to schedule booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule booking"})
		return
	}

	bc.publishAfter(c, before)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type CompleteRequest struct {
	ReportURL *string `json:"report_url" binding:"omitempty,url"`
}

// Complete handles PATCH /admin/bookings/:booking_id/complete.
func (bc *BookingController) Complete(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report_url must be a URL when provided"})
		return
	}

	ctx := c.Request.Context()
	before, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		respondFetchError(c, err)
		return
	}

	if err := booking_models.MarkCompleted(ctx, bc.DB, bookingID, req.ReportURL); err != nil {
		if errors.Is(err, booking_models.ErrBookingNotUpdatable) {
			c.JSON(http.StatusConflict, gin.H{"error": "only scheduled or accepted bookings can be completed"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to complete booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete booking"})
		return
	}

	bc.publishAfter(c, before)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAllBookings handles GET /admin/bookings.
func (bc *BookingController) GetAllBookings(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !shared_models.IsValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := booking_models.GetAllBookings(c.Request.Context(), bc.DB, status, page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// fetchAuthorized loads the booking from the path parameter and checks
// that the caller owns it or is an administrator.
func (bc *BookingController) fetchAuthorized(c *gin.Context) (*booking_models.Booking, bool) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}

	bookingID, ok := parseBookingID(c)
	if !ok {
		return nil, false
	}

	booking, err := booking_models.GetBookingByID(c.Request.Context(), bc.DB, bookingID)
	if err != nil {
		respondFetchError(c, err)
		return nil, false
	}

	if booking.UserID != userID && !utils.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": ErrBookingNotOwnedByUser.Error()})
		return nil, false
	}
	return booking, true
}

// publishAfter re-reads the booking and publishes the change. A failed
// re-read only costs the notification, never the caller's response.
func (bc *BookingController) publishAfter(c *gin.Context, before *booking_models.Booking) {
	after, err := booking_models.GetBookingByID(c.Request.Context(), bc.DB, before.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to re-read booking %s after update: %v", before.ID, err)
		return
	}
	bc.Bus.PublishBookingChange(before, after)
}

func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return uuid.Nil, false
	}
	return bookingID, true
}

func respondFetchError(c *gin.Context, err error) {
	if errors.Is(err, booking_models.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	logger.ErrorLogger.Errorf("Failed to fetch booking: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
}
