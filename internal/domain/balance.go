package domain

import "github.com/shopspring/decimal"

// PaymentStatus is the derived payment position of a ticket.
type PaymentStatus struct {
	TotalPaid   decimal.Decimal
	Outstanding decimal.Decimal
	Paid        bool
}

// EffectivePrice returns the price a ticket settles at: the final price
// when set, otherwise the intake estimate.
func EffectivePrice(t *Ticket) decimal.Decimal {
	if t.FinalPrice != nil {
		return *t.FinalPrice
	}
	return t.EstimatedPrice
}

// TotalPaid sums payment amounts. Refunds are negative rows and net out
// naturally.
func TotalPaid(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Outstanding computes the unpaid balance, floored at zero.
func Outstanding(t *Ticket, payments []Payment) decimal.Decimal {
	outstanding := EffectivePrice(t).Sub(TotalPaid(payments))
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// BalanceOf derives the full payment status for a ticket.
func BalanceOf(t *Ticket, payments []Payment) PaymentStatus {
	paid := TotalPaid(payments)
	outstanding := EffectivePrice(t).Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return PaymentStatus{
		TotalPaid:   paid,
		Outstanding: outstanding,
		Paid:        outstanding.IsZero(),
	}
}
