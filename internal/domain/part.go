package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is a stock item. Quantity is a cached value that must always
// reconcile against the sum of its inventory transaction deltas.
type Part struct {
	ID           string
	Name         string
	SKU          string
	Quantity     int
	ReorderLevel int
	UnitPrice    decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// LowStock reports whether the part is at or below its reorder level.
func (p Part) LowStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// TicketPart is one consumed-part line on a ticket.
type TicketPart struct {
	ID        string
	TicketID  string
	PartID    string
	Quantity  int
	CreatedAt time.Time
}

// InventoryTransactionType marks the direction of a stock delta.
type InventoryTransactionType string

const (
	InventoryTxIn  InventoryTransactionType = "IN"
	InventoryTxOut InventoryTransactionType = "OUT"
)

// InventoryTransaction is an immutable audit row for one stock quantity
// delta. QtyChange is signed: negative for OUT, positive for IN. Cost is
// the absolute money value moved with the stock.
type InventoryTransaction struct {
	ID        string
	PartID    string
	Type      InventoryTransactionType
	QtyChange int
	Cost      decimal.Decimal
	Reason    string
	TicketID  *string
	ReturnID  *string
	CreatedBy *string
	CreatedAt time.Time
}
