package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIncome  MovementType = "income"
	MovementExpense MovementType = "expense"
)

// Movement is a ledger entry. Income movements pay a booking; expense
// movements record a cost billed by a service provider and carry items.
type Movement struct {
	ID                int64           `json:"id"`
	MovementType      MovementType    `json:"movement_type"`
	Amount            decimal.Decimal `json:"amount"`
	MovementDate      time.Time       `json:"movement_date"`
	BookingID         *int64          `json:"booking_id,omitempty"`
	ServiceProviderID *int64          `json:"service_provider_id,omitempty"`
	Concept           string          `json:"concept,omitempty"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	Items             []ExpenseItem   `json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ExpenseItem is one itemized service line of an expense movement.
// TotalAmount = Amount + TaxAmount.
type ExpenseItem struct {
	ID          int64           `json:"id,omitempty"`
	MovementID  int64           `json:"movement_id,omitempty"`
	Position    int             `json:"position"`
	ServiceName string          `json:"service_name"`
	Amount      decimal.Decimal `json:"amount"`
	TaxTypeID   *int64          `json:"tax_type_id,omitempty"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Validate checks the shape rules that differ between income and expense
// movements. It never looks at other movements.
func (m Movement) Validate() error {
	if !m.Amount.IsPositive() {
		return &InvalidMovementError{InvalidInputError{Field: "amount", Reason: "must be greater than zero"}}
	}
	if m.MovementDate.IsZero() {
		return &InvalidMovementError{InvalidInputError{Field: "movement_date", Reason: "is required"}}
	}

	switch m.MovementType {
	case MovementIncome:
		if m.BookingID == nil || *m.BookingID <= 0 {
			return &InvalidMovementError{InvalidInputError{Field: "booking_id", Reason: "income movements require a booking"}}
		}
		if m.ServiceProviderID != nil {
			return &InvalidMovementError{InvalidInputError{Field: "service_provider_id", Reason: "income movements cannot reference a service provider"}}
		}
		if len(m.Items) > 0 {
			return &InvalidMovementError{InvalidInputError{Field: "items", Reason: "income movements cannot carry expense items"}}
		}
	case MovementExpense:
		if m.ServiceProviderID == nil || *m.ServiceProviderID <= 0 {
			return &InvalidMovementError{InvalidInputError{Field: "service_provider_id", Reason: "expense movements require a service provider"}}
		}
		if len(m.Items) == 0 {
			return &InvalidMovementError{InvalidInputError{Field: "items", Reason: "expense movements require at least one item"}}
		}
		for _, it := range m.Items {
			if it.ServiceName == "" {
				return &InvalidMovementError{InvalidInputError{Field: "items.service_name", Reason: "is required"}}
			}
			if it.Amount.IsNegative() {
				return &InvalidMovementError{InvalidInputError{Field: "items.amount", Reason: "cannot be negative"}}
			}
		}
	default:
		return &InvalidMovementError{InvalidInputError{Field: "movement_type", Reason: "must be income or expense"}}
	}
	return nil
}

// BalanceGuard decides whether a write touching a booking's balance may
// proceed. Stores call it inside the write transaction with the booking the
// balance is checked against and the sum of its income movements, leaving
// out the movement being edited.
type BalanceGuard func(booking Booking, paid decimal.Decimal) error

// ExpenseItemChanges is the outcome of reconciling an expense movement's
// stored items with an edited item list.
type ExpenseItemChanges struct {
	Update []ExpenseItem
	Insert []ExpenseItem
	Delete []int64
}
