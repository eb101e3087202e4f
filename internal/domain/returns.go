package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus enumerates return request states. There is no REJECTED
// state: rejecting a pending return is handled outside this write path.
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"
	ReturnStatusApproved ReturnStatus = "APPROVED"
)

// Active reports whether the return blocks creation of another one for
// the same ticket.
func (s ReturnStatus) Active() bool {
	return s == ReturnStatusPending || s == ReturnStatusApproved
}

// Return is a post-repair request to reverse a ticket and refund some or
// all of its price. OriginalTicketStatus snapshots the ticket status at
// creation time for potential restoration.
type Return struct {
	ID                   string
	TicketID             string
	Status               ReturnStatus
	Reason               string
	RefundAmount         decimal.Decimal
	OriginalTicketStatus TicketStatus
	CreatedBy            string
	HandledBy            *string
	HandledAt            *time.Time
	CreatedAt            time.Time
}
