package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/pkg/daterange"
)

type IncomeRequest struct {
	BookingID         *int64          `json:"booking_id"`
	Amount            decimal.Decimal `json:"amount"`
	MovementDate      string          `json:"movement_date"`
	ServiceProviderID *int64          `json:"service_provider_id"`
	Concept           string          `json:"concept" validate:"max=255"`
	PaymentMethod     string          `json:"payment_method" validate:"omitempty,oneof=cash card transfer channel other"`
}

func (r IncomeRequest) toMovement() (domain.Movement, error) {
	m := domain.Movement{
		MovementType:      domain.MovementIncome,
		Amount:            domain.Round2(r.Amount),
		BookingID:         r.BookingID,
		ServiceProviderID: r.ServiceProviderID,
		Concept:           strings.TrimSpace(r.Concept),
		PaymentMethod:     r.PaymentMethod,
	}
	if strings.TrimSpace(r.MovementDate) != "" {
		d, err := daterange.ParseDate(strings.TrimSpace(r.MovementDate))
		if err != nil {
			return m, &domain.InvalidMovementError{InvalidInputError: domain.InvalidInputError{
				Field: "movement_date", Reason: "must be a date in YYYY-MM-DD format",
			}}
		}
		m.MovementDate = d
	}
	return m, m.Validate()
}

type ValidatePaymentRequest struct {
	Amount              decimal.Decimal `json:"amount"`
	ExcludingMovementID *int64          `json:"excluding_movement_id"`
}

type BatchRequest struct {
	BookingIDs []int64 `json:"booking_ids" validate:"required,min=1,max=500,dive,gt=0"`
}
