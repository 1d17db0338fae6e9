package expense

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/settlement"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/pkg/tracing"
	"rentaldesk/internal/pkg/validator"
)

type Service struct {
	movements MovementStore
	taxes     TaxRates
	log       logrus.FieldLogger
}

func NewService(movements MovementStore, taxes TaxRates, log logrus.FieldLogger) *Service {
	return &Service{
		movements: movements,
		taxes:     taxes,
		log:       logger.For(log, "expense"),
	}
}

func (s *Service) GetExpense(ctx context.Context, id int64) (*domain.Movement, error) {
	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.MovementType != domain.MovementExpense {
		return nil, fmt.Errorf("expense movement %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *Service) CreateExpense(ctx context.Context, req ExpenseRequest) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, "expense.CreateExpense")
	defer tracing.End(span, &err)

	m, priced, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	m.Items = priced
	suggested, warnings := s.settleAmount(&m, req.Amount)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.movements.CreateExpense(ctx, &m); err != nil {
		return nil, err
	}

	s.logSaved("CreateExpense", m, warnings)
	return &Result{Movement: &m, SuggestedAmount: suggested, Warnings: warnings}, nil
}

// UpdateExpense replaces the header and reconciles the items of an expense.
// The amount is recomputed from the final items unless req overrides it.
func (s *Service) UpdateExpense(ctx context.Context, id int64, req ExpenseRequest) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, "expense.UpdateExpense", tracing.Movement(id))
	defer tracing.End(span, &err)

	current, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.MovementType != domain.MovementExpense {
		return nil, &domain.InvalidMovementError{InvalidInputError: domain.InvalidInputError{
			Field: "movement_type", Reason: "movement is not an expense",
		}}
	}

	m, priced, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	plan := ReconcileItems(current.Items, priced)
	m.ID = id
	m.Items = plan.Final
	suggested, warnings := s.settleAmount(&m, req.Amount)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.movements.UpdateExpense(ctx, &m, plan.Changes); err != nil {
		return nil, err
	}

	saved, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"funcName":      "UpdateExpense",
		"movement_id":   id,
		"items_updated": len(plan.Changes.Update),
		"items_added":   len(plan.Changes.Insert),
		"items_removed": len(plan.Changes.Delete),
	}).Debug("expense items reconciled")
	s.logSaved("UpdateExpense", *saved, warnings)
	return &Result{Movement: saved, SuggestedAmount: suggested, Warnings: warnings}, nil
}

// prepare validates req and prices its items against the stored tax rates.
func (s *Service) prepare(ctx context.Context, req ExpenseRequest) (domain.Movement, []domain.ExpenseItem, error) {
	if err := validator.Struct(req); err != nil {
		return domain.Movement{}, nil, err
	}
	m, err := req.header()
	if err != nil {
		return domain.Movement{}, nil, err
	}
	items := req.items()

	seen := make(map[int64]bool, len(items))
	var taxIDs []int64
	for _, it := range items {
		if it.ID != 0 {
			if seen[it.ID] {
				return domain.Movement{}, nil, &domain.InvalidInputError{Field: "items.id", Reason: fmt.Sprintf("item %d appears more than once", it.ID)}
			}
			seen[it.ID] = true
		}
		if it.TaxTypeID != nil {
			taxIDs = append(taxIDs, *it.TaxTypeID)
		}
	}

	rates, err := s.taxes.GetRates(ctx, taxIDs)
	if err != nil {
		return domain.Movement{}, nil, err
	}
	for _, id := range taxIDs {
		if _, ok := rates[id]; !ok {
			return domain.Movement{}, nil, &domain.InvalidInputError{Field: "items.tax_type_id", Reason: fmt.Sprintf("unknown tax type %d", id)}
		}
	}
	return m, settlement.PriceItems(items, rates), nil
}

// settleAmount sets m.Amount to the override or the itemized sum and returns
// the sum with a warning when the override is below it.
func (s *Service) settleAmount(m *domain.Movement, override *decimal.Decimal) (decimal.Decimal, []string) {
	suggested := settlement.SumExpenseItems(m.Items)
	warnings := []string{}
	if override == nil {
		m.Amount = suggested
		return suggested, warnings
	}
	m.Amount = domain.Round2(*override)
	if m.Amount.LessThan(suggested) {
		warnings = append(warnings, fmt.Sprintf(
			"amount %s is below the itemized total %s", m.Amount.StringFixed(2), suggested.StringFixed(2)))
	}
	return suggested, warnings
}

func (s *Service) logSaved(funcName string, m domain.Movement, warnings []string) {
	entry := s.log.WithFields(logrus.Fields{
		"funcName":    funcName,
		"movement_id": m.ID,
		"amount":      m.Amount.StringFixed(2),
		"items":       len(m.Items),
	})
	if len(warnings) > 0 {
		entry.WithField("warnings", warnings).Warn("expense saved below itemized total")
		return
	}
	entry.Info("expense saved")
}
