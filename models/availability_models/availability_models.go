package availability_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njangir/acing-interview/logger"
)

// AvailabilityDay is the administrator-authored offering for one date:
// an ordered list of slot labels. An absent row or empty list means the
// day is not bookable.
type AvailabilityDay struct {
	Day       string    `json:"day"` // YYYY-MM-DD
	Slots     []string  `json:"slots"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetAvailabilityDay returns the offered slots for a date, or nil slots
// when no row exists for it.
func GetAvailabilityDay(ctx context.Context, db *pgxpool.Pool, day string) (*AvailabilityDay, error) {
	a := &AvailabilityDay{Day: day}
	query := `SELECT slots, updated_at FROM availability_days WHERE day = $1`

	err := db.QueryRow(ctx, query, day).Scan(&a.Slots, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return a, nil
		}
		logger.ErrorLogger.Errorf("Failed to fetch availability for %s: %v", day, err)
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}
	return a, nil
}

// GetAllAvailability returns every configured day ordered by date.
func GetAllAvailability(ctx context.Context, db *pgxpool.Pool) ([]AvailabilityDay, error) {
	query := `SELECT day, slots, updated_at FROM availability_days ORDER BY day`

	rows, err := db.Query(ctx, query)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch availability days: %v", err)
		return nil, fmt.Errorf("failed to fetch availability days: %w", err)
	}
	defer rows.Close()

	var days []AvailabilityDay
	for rows.Next() {
		var a AvailabilityDay
		if err := rows.Scan(&a.Day, &a.Slots, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability day: %w", err)
		}
		days = append(days, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read availability days: %w", err)
	}
	return days, nil
}

// UpsertAvailabilityDay overwrites the slot list for a date wholesale,
// preserving the administrator's ordering.
func UpsertAvailabilityDay(ctx context.Context, db *pgxpool.Pool, day string, slots []string) error {
	query := `
		INSERT INTO availability_days (day, slots, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day) DO UPDATE SET slots = EXCLUDED.slots, updated_at = EXCLUDED.updated_at`

	if _, err := db.Exec(ctx, query, day, slots, time.Now()); err != nil {
		logger.ErrorLogger.Errorf("Failed to save availability for %s: %v", day, err)
		return fmt.Errorf("failed to save availability: %w", err)
	}
	logger.InfoLogger.Infof("Availability for %s saved (%d slots)", day, len(slots))
	return nil
}
