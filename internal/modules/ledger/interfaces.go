package ledger

import (
	"context"

	"rentaldesk/internal/domain"
)

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Booking, error)
}

// MovementStore is the persistence contract for income movements. The
// income writers run guard inside the same transaction as the write.
type MovementStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Movement, error)
	ListIncomeByBooking(ctx context.Context, bookingID int64) ([]domain.Movement, error)
	ListIncomeByBookings(ctx context.Context, bookingIDs []int64) ([]domain.Movement, error)
	CreateIncome(ctx context.Context, m *domain.Movement, guard domain.BalanceGuard) error
	UpdateIncome(ctx context.Context, m *domain.Movement, guard domain.BalanceGuard) error
	Delete(ctx context.Context, id int64) error
}
