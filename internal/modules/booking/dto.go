package booking

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/settlement"
	"rentaldesk/internal/pkg/daterange"
)

type CreateBookingRequest struct {
	PropertyID int64 `json:"property_id" validate:"required,gt=0"`
	BookingFields
}

// BookingFields are the editable fields of a booking.
type BookingFields struct {
	GuestName   string               `json:"guest_name" validate:"max=255"`
	GuestCount  int                  `json:"guest_count" validate:"gte=0,lte=100"`
	CheckIn     string               `json:"check_in" validate:"required"`
	CheckOut    string               `json:"check_out" validate:"required"`
	BookingType domain.BookingType   `json:"booking_type" validate:"required,oneof=commercial closed_period"`
	Status      domain.BookingStatus `json:"booking_status" validate:"omitempty,oneof=pending confirmed completed"`
	ChannelID   *int64               `json:"channel_id" validate:"omitempty,gt=0"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Notes       string               `json:"notes" validate:"max=2000"`
}

type UpdateBookingRequest struct {
	BookingFields
}

type stay struct {
	checkIn, checkOut time.Time
}

func (f BookingFields) parse() (stay, error) {
	in, err := daterange.ParseDate(strings.TrimSpace(f.CheckIn))
	if err != nil {
		return stay{}, &domain.InvalidInputError{Field: "check_in", Reason: "must be a date in YYYY-MM-DD format"}
	}
	out, err := daterange.ParseDate(strings.TrimSpace(f.CheckOut))
	if err != nil {
		return stay{}, &domain.InvalidInputError{Field: "check_out", Reason: "must be a date in YYYY-MM-DD format"}
	}
	if f.TotalAmount.IsNegative() {
		return stay{}, &domain.InvalidInputError{Field: "total_amount", Reason: "cannot be negative"}
	}
	if f.BookingType == domain.BookingTypeCommercial && strings.TrimSpace(f.GuestName) == "" {
		return stay{}, &domain.InvalidInputError{Field: "guest_name", Reason: "is required for commercial bookings"}
	}
	return stay{checkIn: in, checkOut: out}, nil
}

// guests is the count checked against capacity. Closed periods hold no guests.
func (f BookingFields) guests() int {
	if f.BookingType == domain.BookingTypeClosedPeriod && f.GuestCount == 0 {
		return 1
	}
	return f.GuestCount
}

type BookingDetails struct {
	domain.Booking
	PaymentInfo domain.BookingPaymentInfo `json:"payment_info"`
}

type QuoteRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	ChannelID   *int64          `json:"channel_id" validate:"omitempty,gt=0"`
}

type Quote struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	ChannelID   *int64          `json:"channel_id,omitempty"`
	settlement.Commissions
	TotalToPay decimal.Decimal `json:"total_to_pay"`
}
