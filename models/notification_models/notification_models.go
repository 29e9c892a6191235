package notification_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is a single in-app message for a user, created by the
// booking-change dispatcher.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Href      string    `json:"href"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification creates a new unseen Notification struct.
func NewNotification(userID uuid.UUID, message, href string) (*Notification, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for notification: %w", err)
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Message:   message,
		Href:      href,
		CreatedAt: time.Now(),
	}, nil
}

// CreateNotification inserts a notification record.
func CreateNotification(ctx context.Context, db *pgxpool.Pool, n *Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, message, href, seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := db.Exec(ctx, query, n.ID, n.UserID, n.Message, n.Href, n.Seen, n.CreatedAt); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert notification for user %s: %v", n.UserID, err)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetNotificationsByUser returns a user's notifications, newest first.
func GetNotificationsByUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, limit int) ([]Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	query := `
		SELECT id, user_id, message, href, seen, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := db.Query(ctx, query, userID, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch notifications for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Href, &n.Seen, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	return notifications, nil
}

// MarkSeen flags one of the user's notifications as seen.
func MarkSeen(ctx context.Context, db *pgxpool.Pool, notificationID, userID uuid.UUID) error {
	query := `UPDATE notifications SET seen = true WHERE id = $1 AND user_id = $2`

	cmdTag, err := db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark notification %s seen: %v", notificationID, err)
		return fmt.Errorf("failed to mark notification seen: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
