package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/shared_models"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrSlotTaken surfaces the partial unique index on
	// (booking_date, slot_time) for non-cancelled bookings.
	ErrSlotTaken = errors.New("slot already taken by another booking")
	// ErrBookingNotUpdatable means the guarded update matched no row:
	// the booking moved to a state the transition is not legal from.
	ErrBookingNotUpdatable = errors.New("booking not in an updatable state")
)

// Booking represents a reservation of one coaching-session slot.
// ServiceName and UserEmail are denormalized at creation time so
// listings and notification emails need no joins.
type Booking struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	UserEmail       string     `json:"user_email"`
	ServiceID       uuid.UUID  `json:"service_id"`
	ServiceName     string     `json:"service_name"`
	BookingDate     string     `json:"booking_date"` // YYYY-MM-DD
	SlotTime        string     `json:"slot_time"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	OrderID         *string    `json:"order_id"`
	TransactionID   *string    `json:"transaction_id"`
	Amount          int64      `json:"amount"` // smallest currency unit
	MeetingLink     *string    `json:"meeting_link"`
	ReportURL       *string    `json:"report_url"`
	RefundRequested bool       `json:"refund_requested"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const bookingColumns = `
	id, user_id, user_email, service_id, service_name, booking_date, slot_time,
	status, payment_status, order_id, transaction_id, amount, meeting_link,
	report_url, refund_requested, created_at, updated_at`

// NewBooking creates a new Booking struct in its initial state.
func NewBooking(userID uuid.UUID, userEmail string, serviceID uuid.UUID, serviceName, bookingDate, slotTime, status, paymentStatus string) (*Booking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now()
	return &Booking{
		ID:            id,
		UserID:        userID,
		UserEmail:     userEmail,
		ServiceID:     serviceID,
		ServiceName:   serviceName,
		BookingDate:   bookingDate,
		SlotTime:      slotTime,
		Status:        status,
		PaymentStatus: paymentStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.UserEmail, &b.ServiceID, &b.ServiceName,
		&b.BookingDate, &b.SlotTime, &b.Status, &b.PaymentStatus,
		&b.OrderID, &b.TransactionID, &b.Amount, &b.MeetingLink,
		&b.ReportURL, &b.RefundRequested, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBooking inserts a new booking record into the database.
// The partial unique index on (booking_date, slot_time) for non-cancelled
// bookings is the backstop for two reservations racing past the slot check.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, booking *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Attempting to create booking for %s %s", booking.BookingDate, booking.SlotTime)

	query := `
		INSERT INTO bookings (` + bookingColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		booking.ID, booking.UserID, booking.UserEmail, booking.ServiceID, booking.ServiceName,
		booking.BookingDate, booking.SlotTime, booking.Status, booking.PaymentStatus,
		booking.OrderID, booking.TransactionID, booking.Amount, booking.MeetingLink,
		booking.ReportURL, booking.RefundRequested, booking.CreatedAt, booking.UpdatedAt,
	).Scan(&insertedID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logger.WarnLogger.Warnf("Slot %s %s lost to a concurrent reservation", booking.BookingDate, booking.SlotTime)
			return nil, ErrSlotTaken
		}
		logger.ErrorLogger.Errorf("Failed to insert booking for %s %s: %v", booking.BookingDate, booking.SlotTime, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = insertedID
	logger.InfoLogger.Infof("Booking %s created for %s %s", booking.ID, booking.BookingDate, booking.SlotTime)
	return booking, nil
}

// GetBookingByID fetches a booking record by its ID.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking %s not found", bookingID)
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return booking, nil
}

// GetBookedTimesForDate returns the slot times consumed on a date by
// bookings that are not cancelled. Cancelled bookings free their slot
// purely by being filtered out here.
func GetBookedTimesForDate(ctx context.Context, db *pgxpool.Pool, bookingDate string) ([]string, error) {
	query := `
		SELECT slot_time FROM bookings
		WHERE booking_date = $1 AND status <> $2`

	rows, err := db.Query(ctx, query, bookingDate, shared_models.BookingStatusCancelled)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch booked times for %s: %v", bookingDate, err)
		return nil, fmt.Errorf("failed to fetch booked times: %w", err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan booked time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read booked times: %w", err)
	}
	return times, nil
}

// GetBookingsByUser retrieves a user's bookings with pagination and an
// optional status filter, newest first.
func GetBookingsByUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db, "user_id = $1", []interface{}{userID}, status, page, limit)
}

// GetAllBookings retrieves bookings across all users with pagination and
// an optional status filter (admin surface).
func GetAllBookings(ctx context.Context, db *pgxpool.Pool, status string, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db, "", nil, status, page, limit)
}

func listBookings(ctx context.Context, db *pgxpool.Pool, where string, args []interface{}, status string, page, limit int) ([]Booking, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	if status != "" {
		args = append(args, status)
		cond := fmt.Sprintf("status = $%d", len(args))
		if where == "" {
			where = cond
		} else {
			where += " AND " + cond
		}
	}

	clause := ""
	if where != "" {
		clause = " WHERE " + where
	}

	var totalCount int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+clause, args...).Scan(&totalCount); err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+bookingColumns+` FROM bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, totalCount, nil
}

// AttachPaymentOrder records the gateway order id and the amount due on
// a booking when a payment order is created for it.
func AttachPaymentOrder(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, orderID string, amount int64) error {
	query := `
		UPDATE bookings
		SET order_id = $2, amount = $3, updated_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6)`

	cmdTag, err := db.Exec(ctx, query, bookingID, orderID, amount, time.Now(),
		shared_models.BookingStatusCancelled, shared_models.BookingStatusCompleted)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to attach order %s to booking %s: %v", orderID, bookingID, err)
		return fmt.Errorf("failed to attach payment order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	return nil
}

// MarkPaymentConfirmed applies a verified payment confirmation: the
// booking becomes accepted/paid and the transaction id is recorded. The
// payment_status guard makes re-delivery of the same confirmation a
// zero-row update, which the caller treats as a no-op.
func MarkPaymentConfirmed(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, transactionID string) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, transaction_id = $4, updated_at = $5
		WHERE id = $1 AND payment_status <> $3 AND status NOT IN ($6, $7)`

	cmdTag, err := db.Exec(ctx, query, bookingID,
		shared_models.BookingStatusAccepted, shared_models.PaymentStatusPaid,
		transactionID, time.Now(),
		shared_models.BookingStatusCancelled, shared_models.BookingStatusCompleted)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to confirm payment for booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	logger.InfoLogger.Infof("Booking %s confirmed paid (txn %s)", bookingID, transactionID)
	return nil
}

// MarkScheduled sets the meeting link and moves the booking to scheduled.
func MarkScheduled(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, meetingLink string) error {
	query := `
		UPDATE bookings
		SET status = $2, meeting_link = $3, updated_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6)`

	cmdTag, err := db.Exec(ctx, query, bookingID,
		shared_models.BookingStatusScheduled, meetingLink, time.Now(),
		shared_models.BookingStatusCancelled, shared_models.BookingStatusCompleted)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to schedule booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to schedule booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	logger.InfoLogger.Infof("Booking %s scheduled", bookingID)
	return nil
}

// MarkCompleted moves a scheduled or accepted booking to completed,
// optionally attaching a feedback report reference.
func MarkCompleted(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, reportURL *string) error {
	query := `
		UPDATE bookings
		SET status = $2, report_url = COALESCE($3, report_url), updated_at = $4
		WHERE id = $1 AND status IN ($5, $6)`

	cmdTag, err := db.Exec(ctx, query, bookingID,
		shared_models.BookingStatusCompleted, reportURL, time.Now(),
		shared_models.BookingStatusScheduled, shared_models.BookingStatusAccepted)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to complete booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to complete booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	logger.InfoLogger.Infof("Booking %s completed", bookingID)
	return nil
}

// MarkCancelled cancels a booking from any non-terminal status. The
// freed slot becomes visible to slot resolution on the next read.
func MarkCancelled(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) error {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status NOT IN ($2, $4)`

	cmdTag, err := db.Exec(ctx, query, bookingID,
		shared_models.BookingStatusCancelled, time.Now(),
		shared_models.BookingStatusCompleted)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	logger.InfoLogger.Infof("Booking %s cancelled", bookingID)
	return nil
}

// SetRefundRequested flags a paid booking for admin refund review.
func SetRefundRequested(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) error {
	query := `
		UPDATE bookings
		SET refund_requested = true, updated_at = $2
		WHERE id = $1 AND payment_status = $3 AND status <> $4`

	cmdTag, err := db.Exec(ctx, query, bookingID, time.Now(),
		shared_models.PaymentStatusPaid, shared_models.BookingStatusCancelled)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to flag refund request for booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to request refund: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	return nil
}

// MarkRefunded applies a provider-confirmed refund in one atomic update:
// cancelled, payment refunded, request flag cleared. The transaction id
// is kept for reconciliation against the provider.
func MarkRefunded(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, refund_requested = false, updated_at = $4
		WHERE id = $1 AND payment_status = $5`

	cmdTag, err := db.Exec(ctx, query, bookingID,
		shared_models.BookingStatusCancelled, shared_models.PaymentStatusRefunded,
		time.Now(), shared_models.PaymentStatusPaid)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark booking %s refunded: %v", bookingID, err)
		return fmt.Errorf("failed to mark booking refunded: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotUpdatable
	}
	logger.InfoLogger.Infof("Booking %s refunded and cancelled", bookingID)
	return nil
}
