// Package settlement holds the money rules of a booking: channel commissions,
// tax on those commissions, net amount, balance and expense item totals.
// Every function is pure and rounds to cents at each intermediate step.
package settlement

import (
	"github.com/shopspring/decimal"

	"rentaldesk/internal/domain"
)

type Commissions struct {
	SalesCommissionAmount      decimal.Decimal `json:"sales_commission_amount"`
	CollectionCommissionAmount decimal.Decimal `json:"collection_commission_amount"`
	TaxAmount                  decimal.Decimal `json:"tax_amount"`
	NetAmount                  decimal.Decimal `json:"net_amount"`
}

// ComputeCommissions derives commissions, tax and net from the gross amount.
// A nil channel means a direct booking: no commission, no tax, net = total.
// Tax is levied on the commissions, not on the gross amount.
func ComputeCommissions(totalAmount decimal.Decimal, ch *domain.Channel) Commissions {
	total := domain.Round2(totalAmount)
	if ch == nil {
		return Commissions{
			SalesCommissionAmount:      decimal.Zero,
			CollectionCommissionAmount: decimal.Zero,
			TaxAmount:                  decimal.Zero,
			NetAmount:                  total,
		}
	}

	sales := domain.Percent(total, ch.SalesCommissionRate)
	collection := domain.Percent(total, ch.CollectionCommissionRate)
	tax := decimal.Zero
	if rate := ch.CommissionTaxRate(); !rate.IsZero() {
		tax = domain.Percent(sales.Add(collection), rate)
	}

	return Commissions{
		SalesCommissionAmount:      sales,
		CollectionCommissionAmount: collection,
		TaxAmount:                  tax,
		NetAmount:                  total.Sub(sales).Sub(collection).Sub(tax),
	}
}

// ApplyToBooking refreshes the cached financial fields of b from its total
// and channel. The channel's id is copied onto the booking.
func ApplyToBooking(b *domain.Booking, ch *domain.Channel) {
	c := ComputeCommissions(b.TotalAmount, ch)
	b.TotalAmount = domain.Round2(b.TotalAmount)
	b.SalesCommissionAmount = c.SalesCommissionAmount
	b.CollectionCommissionAmount = c.CollectionCommissionAmount
	b.TaxAmount = c.TaxAmount
	b.NetAmount = c.NetAmount
	b.Channel = ch
	if ch == nil {
		b.ChannelID = nil
	} else {
		id := ch.ID
		b.ChannelID = &id
	}
}

// TotalToPay is what the guest owes the property: the net amount when the
// booking came through a channel, the gross amount otherwise.
func TotalToPay(b domain.Booking) decimal.Decimal {
	if b.HasChannel() {
		return domain.Round2(b.NetAmount)
	}
	return domain.Round2(b.TotalAmount)
}

// PaymentInfo derives the balance; pending never goes below zero.
func PaymentInfo(totalToPay, paid decimal.Decimal) domain.BookingPaymentInfo {
	total := domain.Round2(totalToPay)
	p := domain.Round2(paid)
	pending := total.Sub(p)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return domain.BookingPaymentInfo{
		TotalToPay:    total,
		PaidAmount:    p,
		PendingAmount: pending,
	}
}

// SumIncome adds the amounts of the income movements, skipping the movement
// with id excluding when it is non-zero.
func SumIncome(movements []domain.Movement, excluding int64) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range movements {
		if m.MovementType != domain.MovementIncome {
			continue
		}
		if excluding != 0 && m.ID == excluding {
			continue
		}
		sum = sum.Add(domain.Round2(m.Amount))
	}
	return sum
}
