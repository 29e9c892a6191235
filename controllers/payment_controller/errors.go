package payment_controller

import "errors"

var (
	ErrSignatureMismatch = errors.New("payment signature verification failed")
	ErrNotRefundable     = errors.New("booking is not paid or has no transaction to refund")
	ErrOrderMismatch     = errors.New("order does not belong to this booking")
)
