package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// RecordPaymentRequest payload. Amount is always positive.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal      `json:"amount"`
	Method    domain.PaymentMethod `json:"method"`
	Reference string               `json:"reference"`
	Reason    string               `json:"reason"`
}

// PaymentResponse response.
type PaymentResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticket_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Method      domain.PaymentMethod `json:"method"`
	Reference   string               `json:"reference,omitempty"`
	Reason      string               `json:"reason,omitempty"`
	PerformedBy string               `json:"performed_by"`
	CreatedAt   time.Time            `json:"created_at"`
}

// RecordExpenseRequest payload.
type RecordExpenseRequest struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// ExpenseResponse response.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}
