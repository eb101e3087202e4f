package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// CreateReturnRequest payload.
type CreateReturnRequest struct {
	TicketID     string          `json:"ticket_id"`
	Reason       string          `json:"reason"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// ReturnResponse response.
type ReturnResponse struct {
	ID                   string              `json:"id"`
	TicketID             string              `json:"ticket_id"`
	Status               domain.ReturnStatus `json:"status"`
	Reason               string              `json:"reason"`
	RefundAmount         decimal.Decimal     `json:"refund_amount"`
	OriginalTicketStatus domain.TicketStatus `json:"original_ticket_status"`
	CreatedBy            string              `json:"created_by"`
	HandledBy            *string             `json:"handled_by"`
	HandledAt            *time.Time          `json:"handled_at"`
	CreatedAt            time.Time           `json:"created_at"`
}
