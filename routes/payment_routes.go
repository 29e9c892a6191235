package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/njangir/acing-interview/clients"
	"github.com/njangir/acing-interview/config/db"
	"github.com/njangir/acing-interview/controllers/payment_controller"
	"github.com/njangir/acing-interview/events"
	middleware "github.com/njangir/acing-interview/middlewares"
	"github.com/njangir/acing-interview/middlewares/auth"
)

// RegisterPaymentRoutes registers the payment surface: order creation
// and verification for users, refunds for administrators.
func RegisterPaymentRoutes(router *gin.Engine, bus *events.Bus) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	razorpayClient := clients.NewRazorpayClient(keyID, keySecret)

	controller := payment_controller.NewPaymentController(db.DB, razorpayClient, bus, keyID)

	protected := router.Group("/payments")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/order",
			middleware.CombinedRateLimiter("create-order", "5-1m", "20-10m"),
			controller.CreateOrder)

		protected.POST("/verify",
			middleware.CombinedRateLimiter("verify-payment", "5-1m", "20-10m"),
			controller.VerifyPayment)
	}

	admin := router.Group("/admin/payments")
	admin.Use(auth.AuthMiddleware(), auth.RequireAdmin())
	{
		admin.POST("/:booking_id/refund",
			middleware.CombinedRateLimiter("process-refund", "3-5m", "10-30m"),
			controller.ProcessRefund)
	}
}
