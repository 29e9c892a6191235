package notification_controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/notification_models"
	"github.com/njangir/acing-interview/utils"
)

// NotificationController serves a user's in-app notifications.
type NotificationController struct {
	DB *pgxpool.Pool
}

func NewNotificationController(db *pgxpool.Pool) *NotificationController {
	return &NotificationController{DB: db}
}

// List handles GET /notifications.
func (nc *NotificationController) List(c *gin.Context) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	notifications, err := notification_models.GetNotificationsByUser(c.Request.Context(), nc.DB, userID, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list notifications for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkSeen handles PATCH /notifications/:notification_id/seen.
func (nc *NotificationController) MarkSeen(c *gin.Context) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := notification_models.MarkSeen(c.Request.Context(), nc.DB, notificationID, userID); err != nil {
		if errors.Is(err, notification_models.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to mark notification %s seen: %v", notificationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
