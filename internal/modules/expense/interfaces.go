package expense

import (
	"context"

	"github.com/shopspring/decimal"

	"rentaldesk/internal/domain"
)

type MovementStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Movement, error)
	CreateExpense(ctx context.Context, m *domain.Movement) error
	UpdateExpense(ctx context.Context, m *domain.Movement, changes domain.ExpenseItemChanges) error
}

// TaxRates returns the percentage rate of each known tax type id.
type TaxRates interface {
	GetRates(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
}
