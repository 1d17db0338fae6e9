package domain

import "github.com/shopspring/decimal"

// Channel is a sales intermediary. Rates are percentages (10 means 10%).
type Channel struct {
	ID                       int64           `json:"id"`
	Name                     string          `json:"name"`
	SalesCommissionRate      decimal.Decimal `json:"sales_commission_rate"`
	CollectionCommissionRate decimal.Decimal `json:"collection_commission_rate"`
	ApplyTax                 bool            `json:"apply_tax"`
	TaxTypeID                *int64          `json:"tax_type_id,omitempty"`
	TaxType                  *TaxType        `json:"tax_type,omitempty"`
}

// TaxType is a named tax rate, expressed as a percentage.
type TaxType struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// CommissionTaxRate is the rate levied on the channel's commissions, zero when
// the channel does not apply tax or has no tax type.
func (c *Channel) CommissionTaxRate() decimal.Decimal {
	if c == nil || !c.ApplyTax || c.TaxType == nil {
		return decimal.Zero
	}
	return c.TaxType.Rate
}
