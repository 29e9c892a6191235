package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/njangir/acing-interview/config/db"
	"github.com/njangir/acing-interview/controllers/availability_controller"
	"github.com/njangir/acing-interview/controllers/booking_controller"
	"github.com/njangir/acing-interview/events"
	middleware "github.com/njangir/acing-interview/middlewares"
	"github.com/njangir/acing-interview/middlewares/auth"
)

// RegisterBookingRoutes registers the booking lifecycle surface.
func RegisterBookingRoutes(router *gin.Engine, bus *events.Bus) {
	resolver := availability_controller.NewAvailabilityController(db.DB)
	controller := booking_controller.NewBookingController(db.DB, bus, resolver)

	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.CombinedRateLimiter("reserve-booking", "5-1m", "20-10m"),
			controller.Reserve)

		protected.GET("/my",
			middleware.NewRateLimiter("20-1m", "my-bookings"),
			controller.GetMyBookings)

		protected.GET("/:booking_id",
			middleware.NewRateLimiter("15-30s", "get-booking"),
			controller.GetBooking)

		protected.PATCH("/:booking_id/cancel",
			middleware.CombinedRateLimiter("cancel-booking", "3-1m", "10-10m"),
			controller.Cancel)

		protected.POST("/:booking_id/request-refund",
			middleware.NewRateLimiter("3-1m", "request-refund"),
			controller.RequestRefund)
	}

	admin := router.Group("/admin/bookings")
	admin.Use(auth.AuthMiddleware(), auth.RequireAdmin())
	{
		admin.GET("",
			middleware.NewRateLimiter("20-1m", "admin-bookings"),
			controller.GetAllBookings)

		admin.PATCH("/:booking_id/schedule",
			middleware.NewRateLimiter("10-1m", "schedule-booking"),
			controller.Schedule)

		admin.PATCH("/:booking_id/complete",
			middleware.NewRateLimiter("10-1m", "complete-booking"),
			controller.Complete)

		admin.PATCH("/:booking_id/cancel",
			middleware.NewRateLimiter("10-1m", "admin-cancel-booking"),
			controller.Cancel)
	}
}
