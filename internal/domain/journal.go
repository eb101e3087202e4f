package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryType classifies a ledger row.
type JournalEntryType string

const (
	JournalTypePayment JournalEntryType = "PAYMENT"
	JournalTypeRefund  JournalEntryType = "REFUND"
	JournalTypeExpense JournalEntryType = "EXPENSE"
)

// JournalReferenceType names the operational record a ledger row points at.
type JournalReferenceType string

const (
	JournalRefPayment JournalReferenceType = "PAYMENT"
	JournalRefReturn  JournalReferenceType = "RETURN"
	JournalRefExpense JournalReferenceType = "EXPENSE"
)

// JournalEntry is an immutable ledger row, the single source of truth
// for financial aggregation. Amount is always positive; direction is
// encoded by the entry type.
type JournalEntry struct {
	ID            string
	Type          JournalEntryType
	Amount        decimal.Decimal
	Description   string
	ReferenceType JournalReferenceType
	ReferenceID   string
	TicketID      *string
	CreatedBy     string
	CreatedAt     time.Time
}

// Expense is an operational cost record. Soft-deleted expenses are
// excluded from aggregation.
type Expense struct {
	ID          string
	Description string
	Category    string
	Amount      decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}
