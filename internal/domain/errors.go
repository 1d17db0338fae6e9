package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrOverbooking     = errors.New("dates overlap an existing booking")
	ErrDuplicate       = errors.New("duplicate record")
	ErrLockNotObtained = errors.New("another write for this booking is in progress")
)

// InvalidInputError rejects a request before any computation or write.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// InvalidMovementError is an InvalidInputError raised by movement shape rules.
type InvalidMovementError struct {
	InvalidInputError
}

func (e *InvalidMovementError) Error() string {
	return "invalid movement: " + e.Field + " " + e.Reason
}

func (e *InvalidMovementError) Unwrap() error {
	return &e.InvalidInputError
}

// OverpaymentError reports an income amount above what is still owed.
type OverpaymentError struct {
	BookingID  int64
	TotalToPay decimal.Decimal
	Paid       decimal.Decimal
	Pending    decimal.Decimal
	Proposed   decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf(
		"payment of %s exceeds pending amount %s for booking %d (total to pay %s, already paid %s)",
		e.Proposed.StringFixed(2), e.Pending.StringFixed(2), e.BookingID,
		e.TotalToPay.StringFixed(2), e.Paid.StringFixed(2),
	)
}

// PaidExceedsTotalError rejects a booking edit that would leave recorded
// income above the booking's new total to pay.
type PaidExceedsTotalError struct {
	BookingID  int64
	TotalToPay decimal.Decimal
	Paid       decimal.Decimal
}

func (e *PaidExceedsTotalError) Error() string {
	return fmt.Sprintf(
		"booking %d already has %s paid, above the new total to pay %s",
		e.BookingID, e.Paid.StringFixed(2), e.TotalToPay.StringFixed(2),
	)
}

// DataIntegrityError reports a calendar day claimed by more than one booking.
type DataIntegrityError struct {
	Date       time.Time `json:"date"`
	BookingIDs []int64   `json:"booking_ids"`
}

func (e *DataIntegrityError) Error() string {
	ids := make([]string, 0, len(e.BookingIDs))
	for _, id := range e.BookingIDs {
		ids = append(ids, fmt.Sprint(id))
	}
	return fmt.Sprintf("day %s is claimed by bookings %s", e.Date.Format("2006-01-02"), strings.Join(ids, ", "))
}
