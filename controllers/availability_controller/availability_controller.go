package availability_controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/availability_models"
	"github.com/njangir/acing-interview/models/booking_models"
)

// AvailabilityController serves slot resolution for users and the
// availability calendar for administrators.
type AvailabilityController struct {
	DB *pgxpool.Pool
}

func NewAvailabilityController(db *pgxpool.Pool) *AvailabilityController {
	return &AvailabilityController{DB: db}
}

// ValidateDate checks the canonical YYYY-MM-DD form.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// SubtractBooked removes booked labels from the offered list while
// preserving the administrator's ordering.
func SubtractBooked(offered, booked []string) []string {
	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}
	remaining := make([]string, 0, len(offered))
	for _, slot := range offered {
		if !taken[slot] {
			remaining = append(remaining, slot)
		}
	}
	return remaining
}

// Resolve computes the slots still offerable on a date: the
// administrator's list minus slot times held by non-cancelled bookings.
// Store failures are returned as errors, never as an empty day.
func (ac *AvailabilityController) Resolve(ctx context.Context, date string) ([]string, error) {
	day, err := availability_models.GetAvailabilityDay(ctx, ac.DB, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve slots for %s: %w", date, err)
	}
	if len(day.Slots) == 0 {
		return []string{}, nil
	}

	booked, err := booking_models.GetBookedTimesForDate(ctx, ac.DB, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve slots for %s: %w", date, err)
	}
	return SubtractBooked(day.Slots, booked), nil
}

// GetAvailableSlots handles GET /slots/available?date=YYYY-MM-DD.
func (ac *AvailabilityController) GetAvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	if err := ValidateDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := ac.Resolve(c.Request.Context(), date)
	if err != nil {
		logger.ErrorLogger.Errorf("Slot resolution failed for %s: %v", date, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load available slots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"availableSlots": slots})
}

// GetAvailability handles GET /admin/availability.
func (ac *AvailabilityController) GetAvailability(c *gin.Context) {
	days, err := availability_models.GetAllAvailability(c.Request.Context(), ac.DB)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load availability calendar: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load availability"})
		return
	}

	availability := make(map[string][]string, len(days))
	for _, day := range days {
		availability[day.Day] = day.Slots
	}
	c.JSON(http.StatusOK, gin.H{"availability": availability})
}

// SaveAvailability handles PUT /admin/availability. Each date's list is
// overwritten wholesale; an empty list marks the day unavailable.
func (ac *AvailabilityController) SaveAvailability(c *gin.Context) {
	var updates map[string][]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no availability updates provided"})
		return
	}

	for date, slots := range updates {
		if err := ValidateDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date %q: %v", date, err)})
			return
		}
		if err := validateSlotLabels(slots); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid slots for %s: %v", date, err)})
			return
		}
	}

	ctx := c.Request.Context()
	for date, slots := range updates {
		if err := availability_models.UpsertAvailabilityDay(ctx, ac.DB, date, slots); err != nil {
			logger.ErrorLogger.Errorf("Failed to save availability for %s: %v", date, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save availability"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func validateSlotLabels(slots []string) error {
	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if slot == "" {
			return errors.New("slot labels must be non-empty")
		}
		if seen[slot] {
			return ErrDuplicateSlots
		}
		seen[slot] = true
	}
	return nil
}
