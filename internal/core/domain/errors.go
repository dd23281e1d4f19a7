package domain

import (
	"errors"
	"fmt"
)

var ErrAppointmentNotFound = errors.New("appointment not found")
var ErrServiceNotFound = errors.New("service not found")
var ErrInvalidStatus = errors.New("invalid appointment status")

// ErrSlotUnavailable is returned when a booking targets a slot that is
// already occupied or in the past.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrSlotOutsideSchedule is returned when a booking targets a day or time the
// shop is closed.
var ErrSlotOutsideSchedule = errors.New("slot outside opening hours")

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAdminNotConfigured = errors.New("admin access not configured")

var ErrSMSNotConfigured = errors.New("sms gateway not configured")
var ErrSMSUpstream = errors.New("sms gateway error")

// ErrStoreConflict is returned when a compare-and-swap mutation keeps losing
// to concurrent writers.
var ErrStoreConflict = errors.New("record store conflict")

// ErrStatusChangeFailed is returned when an optimistic status change could
// not be confirmed remotely and was rolled back.
var ErrStatusChangeFailed = errors.New("status change failed")

// UpstreamError carries the gateway's response when it rejects a request.
type UpstreamError struct {
	StatusCode int
	Details    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrSMSUpstream, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return ErrSMSUpstream }
