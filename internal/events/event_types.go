package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketPartAdded     EventType = "ticket_part_added"
	EventTicketPartRemoved   EventType = "ticket_part_removed"
	EventPaymentRecorded     EventType = "payment_recorded"
	EventReturnCreated       EventType = "return_created"
	EventReturnApproved      EventType = "return_approved"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	TrackingCode string                `json:"tracking_code"`
	CustomerID   string                `json:"customer_id"`
	Priority     domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketPartPayload payload for part add/remove.
type TicketPartPayload struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	PaymentID string               `json:"payment_id"`
	Amount    decimal.Decimal      `json:"amount"`
	Method    domain.PaymentMethod `json:"method"`
}

// ReturnPayload payload for return lifecycle events.
type ReturnPayload struct {
	ReturnID     string              `json:"return_id"`
	Status       domain.ReturnStatus `json:"status"`
	RefundAmount decimal.Decimal     `json:"refund_amount"`
}
