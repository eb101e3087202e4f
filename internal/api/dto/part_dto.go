package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// CreatePartRequest payload.
type CreatePartRequest struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// AddTicketPartRequest payload.
type AddTicketPartRequest struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// PartResponse response.
type PartResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TicketPartResponse represents one consumed-part line.
type TicketPartResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	PartID    string    `json:"part_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryTransactionResponse represents one ledger row.
type InventoryTransactionResponse struct {
	ID        string                          `json:"id"`
	PartID    string                          `json:"part_id"`
	Type      domain.InventoryTransactionType `json:"type"`
	QtyChange int                             `json:"qty_change"`
	Cost      decimal.Decimal                 `json:"cost"`
	Reason    string                          `json:"reason"`
	TicketID  *string                         `json:"ticket_id"`
	ReturnID  *string                         `json:"return_id"`
	CreatedAt time.Time                       `json:"created_at"`
}
