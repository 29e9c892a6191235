package shared_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(BookingStatusCompleted))
	assert.True(t, IsTerminalStatus(BookingStatusCancelled))
	assert.False(t, IsTerminalStatus(BookingStatusPendingPayment))
	assert.False(t, IsTerminalStatus(BookingStatusPendingApproval))
	assert.False(t, IsTerminalStatus(BookingStatusAccepted))
	assert.False(t, IsTerminalStatus(BookingStatusScheduled))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{
		BookingStatusPendingPayment,
		BookingStatusPendingApproval,
		BookingStatusAccepted,
		BookingStatusScheduled,
		BookingStatusCompleted,
		BookingStatusCancelled,
	} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("confirmed"))
	assert.False(t, IsValidStatus(""))
}
