package booking_controller

import "errors"

var (
	ErrSlotUnavailable       = errors.New("requested slot is no longer available")
	ErrBookingNotOwnedByUser = errors.New("booking does not belong to this user")
)
