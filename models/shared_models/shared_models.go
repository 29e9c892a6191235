package shared_models

// Booking statuses. A booking moves pending_payment/pending_approval ->
// accepted -> scheduled -> completed; cancelled is reachable from any
// non-terminal status. The transitions themselves are enforced by the
// guarded updates in booking_models.
const (
	BookingStatusPendingPayment  = "pending_payment"
	BookingStatusPendingApproval = "pending_approval"
	BookingStatusAccepted        = "accepted"
	BookingStatusScheduled       = "scheduled"
	BookingStatusCompleted       = "completed"
	BookingStatusCancelled       = "cancelled"
)

// Payment statuses, tracked orthogonally to the booking status.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

var bookingStatuses = map[string]bool{
	BookingStatusPendingPayment:  true,
	BookingStatusPendingApproval: true,
	BookingStatusAccepted:        true,
	BookingStatusScheduled:       true,
	BookingStatusCompleted:       true,
	BookingStatusCancelled:       true,
}

// IsValidStatus reports whether s is a known booking status.
func IsValidStatus(s string) bool {
	return bookingStatuses[s]
}

// IsTerminalStatus reports whether no further transition is allowed from s.
func IsTerminalStatus(s string) bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}
