package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingType string

const (
	BookingTypeCommercial   BookingType = "commercial"
	BookingTypeClosedPeriod BookingType = "closed_period"
)

func (t BookingType) Valid() bool {
	return t == BookingTypeCommercial || t == BookingTypeClosedPeriod
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is a reserved range of nights on a property. CheckIn and CheckOut
// are calendar days at midnight UTC; the stay covers [CheckIn, CheckOut).
//
// The commission, tax and net fields are derived from TotalAmount and the
// channel by the settlement engine and are never authored directly.
type Booking struct {
	ID          int64         `json:"id"`
	Code        string        `json:"code"`
	PropertyID  int64         `json:"property_id"`
	GuestName   string        `json:"guest_name,omitempty"`
	GuestCount  int           `json:"guest_count"`
	CheckIn     time.Time     `json:"check_in"`
	CheckOut    time.Time     `json:"check_out"`
	BookingType BookingType   `json:"booking_type"`
	Status      BookingStatus `json:"booking_status"`

	ChannelID *int64   `json:"channel_id,omitempty"`
	Channel   *Channel `json:"channel,omitempty"`

	TotalAmount                decimal.Decimal `json:"total_amount"`
	SalesCommissionAmount      decimal.Decimal `json:"sales_commission_amount"`
	CollectionCommissionAmount decimal.Decimal `json:"collection_commission_amount"`
	TaxAmount                  decimal.Decimal `json:"tax_amount"`
	NetAmount                  decimal.Decimal `json:"net_amount"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Booking) HasChannel() bool {
	return b.ChannelID != nil
}

func (b Booking) IsCancelled() bool {
	return b.Status == BookingCancelled
}

// Property is the rentable unit. MaxGuests of zero means no capacity limit.
type Property struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MaxGuests int    `json:"max_guests"`
}
