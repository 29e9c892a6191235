package notifier

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/events"
	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/booking_models"
	"github.com/njangir/acing-interview/models/notification_models"
	"github.com/njangir/acing-interview/models/shared_models"
	"github.com/njangir/acing-interview/utils/mail"
)

// Draft is one notification derived from a booking change, before it is
// persisted or mailed.
type Draft struct {
	Message       string
	Href          string
	EmailSubject  string
	EmailTemplate string
}

// Dispatcher turns booking before/after snapshots into user
// notifications. Persistence and email are both best effort: failures
// are logged and never reach the booking write that triggered them.
type Dispatcher struct {
	DB *pgxpool.Pool
}

func NewDispatcher(db *pgxpool.Pool) *Dispatcher {
	return &Dispatcher{DB: db}
}

// Changes evaluates the dispatch rules over one before/after pair.
// Rules are independent; a single write can produce several drafts.
func Changes(before, after *booking_models.Booking) []Draft {
	if after == nil {
		return nil
	}

	prevStatus := ""
	prevLink := ""
	prevReport := ""
	if before != nil {
		prevStatus = before.Status
		if before.MeetingLink != nil {
			prevLink = *before.MeetingLink
		}
		if before.ReportURL != nil {
			prevReport = *before.ReportURL
		}
	}

	var drafts []Draft
	href := "/dashboard/bookings/" + after.ID.String()

	if after.Status == shared_models.BookingStatusScheduled && prevStatus != shared_models.BookingStatusScheduled &&
		after.MeetingLink != nil && *after.MeetingLink != "" && prevLink == "" {
		drafts = append(drafts, Draft{
			Message:       fmt.Sprintf("Your %s session on %s at %s has been scheduled.", after.ServiceName, after.BookingDate, after.SlotTime),
			Href:          href,
			EmailSubject:  "Your session has been scheduled",
			EmailTemplate: "booking_scheduled.html",
		})
	}

	if after.Status == shared_models.BookingStatusCancelled && prevStatus != shared_models.BookingStatusCancelled {
		drafts = append(drafts, Draft{
			Message:       fmt.Sprintf("Your %s session on %s at %s has been cancelled.", after.ServiceName, after.BookingDate, after.SlotTime),
			Href:          href,
			EmailSubject:  "Your session has been cancelled",
			EmailTemplate: "booking_cancelled.html",
		})
	}

	if after.Status == shared_models.BookingStatusCompleted && prevStatus != shared_models.BookingStatusCompleted {
		drafts = append(drafts, Draft{
			Message: fmt.Sprintf("Your %s session is complete. Feedback is now available.", after.ServiceName),
			Href:    href,
		})
	}

	if after.ReportURL != nil && *after.ReportURL != "" && prevReport == "" {
		drafts = append(drafts, Draft{
			Message:       fmt.Sprintf("A feedback report for your %s session is available.", after.ServiceName),
			Href:          *after.ReportURL,
			EmailSubject:  "Your feedback report is ready",
			EmailTemplate: "feedback_ready.html",
		})
	}

	return drafts
}

// HandleBookingChange is the events.Bus handler.
func (d *Dispatcher) HandleBookingChange(ctx context.Context, change events.BookingChange) {
	drafts := Changes(change.Before, change.After)
	if len(drafts) == 0 {
		return
	}

	booking := change.After
	for _, draft := range drafts {
		n, err := notification_models.NewNotification(booking.UserID, draft.Message, draft.Href)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to build notification for booking %s: %v", booking.ID, err)
			continue
		}
		if err := notification_models.CreateNotification(ctx, d.DB, n); err != nil {
			// Notifications are not transactional with the booking write.
			logger.ErrorLogger.Errorf("Failed to persist notification for booking %s: %v", booking.ID, err)
		}

		if draft.EmailTemplate == "" || booking.UserEmail == "" {
			continue
		}
		emailData := struct {
			ServiceName string
			Date        string
			Time        string
			MeetingLink string
			ReportURL   string
		}{
			ServiceName: booking.ServiceName,
			Date:        booking.BookingDate,
			Time:        booking.SlotTime,
		}
		if booking.MeetingLink != nil {
			emailData.MeetingLink = *booking.MeetingLink
		}
		if booking.ReportURL != nil {
			emailData.ReportURL = *booking.ReportURL
		}
		if err := mail.SendBookingEmail(booking.UserEmail, draft.EmailSubject, draft.EmailTemplate, emailData); err != nil {
			logger.ErrorLogger.Errorf("Failed to send notification email for booking %s: %v", booking.ID, err)
		}
	}
}
