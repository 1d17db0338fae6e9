package domain

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns round2(amount * rate / 100).
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(rate).Div(hundred))
}
