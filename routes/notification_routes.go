package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/njangir/acing-interview/config/db"
	"github.com/njangir/acing-interview/controllers/notification_controller"
	middleware "github.com/njangir/acing-interview/middlewares"
	"github.com/njangir/acing-interview/middlewares/auth"
)

// RegisterNotificationRoutes registers the user notification feed.
func RegisterNotificationRoutes(router *gin.Engine) {
	controller := notification_controller.NewNotificationController(db.DB)

	protected := router.Group("/notifications")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("",
			middleware.NewRateLimiter("30-1m", "list-notifications"),
			controller.List)

		protected.PATCH("/:notification_id/seen",
			middleware.NewRateLimiter("30-1m", "seen-notification"),
			controller.MarkSeen)
	}
}
