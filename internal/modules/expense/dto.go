package expense

import (
	"strings"

	"github.com/shopspring/decimal"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/pkg/daterange"
)

type ItemRequest struct {
	ID          int64           `json:"id,omitempty"`
	ServiceName string          `json:"service_name" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	TaxTypeID   *int64          `json:"tax_type_id"`
}

// ExpenseRequest creates or replaces an expense movement. Amount overrides
// the itemized total when set.
type ExpenseRequest struct {
	ServiceProviderID *int64           `json:"service_provider_id"`
	BookingID         *int64           `json:"booking_id"`
	MovementDate      string           `json:"movement_date"`
	Concept           string           `json:"concept" validate:"max=255"`
	PaymentMethod     string           `json:"payment_method" validate:"omitempty,oneof=cash card transfer channel other"`
	Amount            *decimal.Decimal `json:"amount"`
	Items             []ItemRequest    `json:"items" validate:"dive"`
}

func (r ExpenseRequest) header() (domain.Movement, error) {
	m := domain.Movement{
		MovementType:      domain.MovementExpense,
		BookingID:         r.BookingID,
		ServiceProviderID: r.ServiceProviderID,
		Concept:           strings.TrimSpace(r.Concept),
		PaymentMethod:     r.PaymentMethod,
	}
	if raw := strings.TrimSpace(r.MovementDate); raw != "" {
		d, err := daterange.ParseDate(raw)
		if err != nil {
			return m, &domain.InvalidMovementError{InvalidInputError: domain.InvalidInputError{
				Field: "movement_date", Reason: "must be a date in YYYY-MM-DD format",
			}}
		}
		m.MovementDate = d
	}
	return m, nil
}

func (r ExpenseRequest) items() []domain.ExpenseItem {
	out := make([]domain.ExpenseItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, domain.ExpenseItem{
			ID:          it.ID,
			ServiceName: strings.TrimSpace(it.ServiceName),
			Amount:      it.Amount,
			TaxTypeID:   it.TaxTypeID,
		})
	}
	return out
}

// Result is a saved expense plus what the itemized total suggested and any
// non-fatal warnings about the chosen amount.
type Result struct {
	Movement        *domain.Movement `json:"movement"`
	SuggestedAmount decimal.Decimal  `json:"suggested_amount"`
	Warnings        []string         `json:"warnings"`
}
