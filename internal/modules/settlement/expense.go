package settlement

import (
	"github.com/shopspring/decimal"

	"rentaldesk/internal/domain"
)

type ItemTotals struct {
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ComputeExpenseItemTotal applies a percentage tax rate to an item amount.
func ComputeExpenseItemTotal(amount, taxRate decimal.Decimal) ItemTotals {
	a := domain.Round2(amount)
	tax := domain.Percent(a, taxRate)
	return ItemTotals{TaxAmount: tax, TotalAmount: a.Add(tax)}
}

// SumExpenseItems is the suggested top-level amount of an expense movement.
func SumExpenseItems(items []domain.ExpenseItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalAmount)
	}
	return domain.Round2(sum)
}

// PriceItems fills tax and total of every item from the rates keyed by tax
// type id. Items without a tax type, or with an unknown one, are untaxed.
func PriceItems(items []domain.ExpenseItem, rates map[int64]decimal.Decimal) []domain.ExpenseItem {
	out := make([]domain.ExpenseItem, len(items))
	for i, it := range items {
		rate := decimal.Zero
		if it.TaxTypeID != nil {
			if r, ok := rates[*it.TaxTypeID]; ok {
				rate = r
			}
		}
		totals := ComputeExpenseItemTotal(it.Amount, rate)
		it.Amount = domain.Round2(it.Amount)
		it.TaxAmount = totals.TaxAmount
		it.TotalAmount = totals.TotalAmount
		it.Position = i
		out[i] = it
	}
	return out
}
