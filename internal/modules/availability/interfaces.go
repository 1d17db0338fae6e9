package availability

import (
	"context"
	"time"

	"rentaldesk/internal/domain"
)

// BookingReader returns the non-cancelled bookings of a property whose stay
// overlaps [start, end), ordered by check-in.
type BookingReader interface {
	ListOverlapping(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error)
}

type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}
