package booking

import (
	"context"
	"time"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/availability"
)

// BookingRepository defines the persistence operations the booking flow needs.
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListForProperty(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
	Update(ctx context.Context, b *domain.Booking, guard domain.BalanceGuard) error
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

type ChannelRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Channel, error)
}

type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, guestCount int) (*availability.Result, error)
	CheckAvailabilityExcluding(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, guestCount int, excludeBookingID int64) (*availability.Result, error)
}

type PaymentInfoReader interface {
	GetPaymentInfo(ctx context.Context, bookingID int64) (*domain.BookingPaymentInfo, error)
	GetPaymentInfoBatch(ctx context.Context, bookings []domain.Booking) ([]domain.BookingPaymentInfo, error)
}
