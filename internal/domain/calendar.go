package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalendarDay is the occupancy of one day, derived per query and never stored.
type CalendarDay struct {
	Date        time.Time   `json:"date"`
	IsAvailable bool        `json:"is_available"`
	BookingID   int64       `json:"booking_id,omitempty"`
	BookingCode string      `json:"booking_code,omitempty"`
	BookingType BookingType `json:"booking_type,omitempty"`
	IsCheckIn   bool        `json:"is_check_in"`
	IsCheckOut  bool        `json:"is_check_out"`
	GuestName   string      `json:"guest_name,omitempty"`

	// ClaimedBy lists every booking holding the night when more than one
	// does. A non-empty list means the stored calendar is inconsistent.
	ClaimedBy []int64 `json:"claimed_by,omitempty"`
}

func (d CalendarDay) ConflictOfRecord() bool {
	return len(d.ClaimedBy) > 1
}

// Period is a free range of nights [Start, End).
type Period struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Nights int       `json:"nights"`
}

// BookingPaymentInfo is the derived balance of a booking.
type BookingPaymentInfo struct {
	BookingID     int64           `json:"booking_id"`
	TotalToPay    decimal.Decimal `json:"total_to_pay"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}
