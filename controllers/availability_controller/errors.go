package availability_controller

import "errors"

var (
	ErrInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
	ErrDuplicateSlots = errors.New("slot labels must be unique within a day")
)
