package main

import (
	"context"
	"embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/njangir/acing-interview/config"
	"github.com/njangir/acing-interview/config/db"
	redisclient "github.com/njangir/acing-interview/config/redis"
	"github.com/njangir/acing-interview/events"
	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/middlewares/cors"
	"github.com/njangir/acing-interview/notifier"
	"github.com/njangir/acing-interview/routes"
	"github.com/njangir/acing-interview/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redisclient.CloseRedis()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Email templates initialized.")

	// Booking writes publish before/after snapshots; the notifier
	// consumes them off the request path.
	bus := events.NewBus()
	dispatcher := notifier.NewDispatcher(db.DB)
	bus.Subscribe(dispatcher.HandleBookingChange)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterAvailabilityRoutes(r)
	routes.RegisterBookingRoutes(r, bus)
	routes.RegisterPaymentRoutes(r, bus)
	routes.RegisterNotificationRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from booking service"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Errorf("Server failed to listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	// Let in-flight notification handlers finish before the pool closes.
	bus.Wait()

	logger.InfoLogger.Info("Server exited gracefully.")
}
