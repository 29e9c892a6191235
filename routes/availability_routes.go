package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/njangir/acing-interview/config/db"
	"github.com/njangir/acing-interview/controllers/availability_controller"
	middleware "github.com/njangir/acing-interview/middlewares"
	"github.com/njangir/acing-interview/middlewares/auth"
)

// RegisterAvailabilityRoutes registers slot resolution for users and
// the availability calendar for administrators.
func RegisterAvailabilityRoutes(router *gin.Engine) {
	controller := availability_controller.NewAvailabilityController(db.DB)

	protected := router.Group("/slots")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/available",
			middleware.NewRateLimiter("50-1m", "available-slots"),
			controller.GetAvailableSlots)
	}

	admin := router.Group("/admin/availability")
	admin.Use(auth.AuthMiddleware(), auth.RequireAdmin())
	{
		admin.GET("",
			middleware.NewRateLimiter("30-1m", "get-availability"),
			controller.GetAvailability)

		admin.PUT("",
			middleware.CombinedRateLimiter("save-availability", "10-1m", "50-10m"),
			controller.SaveAvailability)
	}
}
