package availability

type ConflictKind string

const (
	ConflictCommercial       ConflictKind = "commercial"
	ConflictClosedPeriod     ConflictKind = "closed_period"
	ConflictInvalidRange     ConflictKind = "invalid_range"
	ConflictPropertyNotFound ConflictKind = "property_not_found"
	ConflictCapacity         ConflictKind = "capacity"
)

// Conflict is a reason a proposed stay cannot be booked. It is returned as
// data, never as an error.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	Message     string       `json:"message"`
	BookingID   int64        `json:"booking_id,omitempty"`
	BookingCode string       `json:"booking_code,omitempty"`
	CheckIn     string       `json:"check_in,omitempty"`
	CheckOut    string       `json:"check_out,omitempty"`
	GuestName   string       `json:"guest_name,omitempty"`
}
