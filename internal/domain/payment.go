package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how money changed hands.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// Payment is an immutable money movement against a ticket. Customer
// payments carry a positive amount; refunds are recorded as new rows
// with a negative amount, never as mutations.
type Payment struct {
	ID          string
	TicketID    string
	Amount      decimal.Decimal
	Method      PaymentMethod
	Reference   string
	Reason      string
	PerformedBy string
	CreatedAt   time.Time
}
