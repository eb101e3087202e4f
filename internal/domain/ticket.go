package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus enumerates lifecycle states for repair tickets.
type TicketStatus string

const (
	TicketStatusReceived        TicketStatus = "RECEIVED"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingForParts TicketStatus = "WAITING_FOR_PARTS"
	TicketStatusRepaired        TicketStatus = "REPAIRED"
	TicketStatusCompleted       TicketStatus = "COMPLETED"
	TicketStatusReturned        TicketStatus = "RETURNED"
	TicketStatusCancelled       TicketStatus = "CANCELLED"
)

// Valid reports whether the status belongs to the closed set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusReceived, TicketStatusInProgress, TicketStatusWaitingForParts,
		TicketStatusRepaired, TicketStatusCompleted, TicketStatusReturned, TicketStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave the status.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusReturned || s == TicketStatusCancelled
}

// TicketPriority enumerates repair urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityNormal TicketPriority = "NORMAL"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether the priority belongs to the closed set.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for one repair work order.
type Ticket struct {
	ID             string
	TicketNumber   string
	TrackingCode   string
	CustomerID     string
	DeviceBrand    string
	DeviceModel    string
	SerialNumber   *string
	Issue          string
	Status         TicketStatus
	Priority       TicketPriority
	EstimatedPrice decimal.Decimal
	FinalPrice     *decimal.Decimal
	Paid           bool
	WarrantyDays   int
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// StatusHistory is an immutable, append-only status trail entry.
type StatusHistory struct {
	ID        string
	TicketID  string
	Status    TicketStatus
	Note      string
	CreatedBy *string
	CreatedAt time.Time
}
