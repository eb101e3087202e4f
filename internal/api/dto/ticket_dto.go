package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID     string                `json:"customer_id"`
	DeviceBrand    string                `json:"device_brand"`
	DeviceModel    string                `json:"device_model"`
	SerialNumber   *string               `json:"serial_number"`
	Issue          string                `json:"issue"`
	Priority       domain.TicketPriority `json:"priority"`
	EstimatedPrice decimal.Decimal       `json:"estimated_price"`
	WarrantyDays   int                   `json:"warranty_days"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status   domain.TicketStatus `json:"status"`
	Note     string              `json:"note"`
	Override bool                `json:"override"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	TicketNumber   string                `json:"ticket_number"`
	TrackingCode   string                `json:"tracking_code"`
	CustomerID     string                `json:"customer_id"`
	DeviceBrand    string                `json:"device_brand"`
	DeviceModel    string                `json:"device_model"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	EstimatedPrice decimal.Decimal       `json:"estimated_price"`
	FinalPrice     *decimal.Decimal      `json:"final_price"`
	Paid           bool                  `json:"paid"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the derived
// payment position and status history.
type TicketDetailResponse struct {
	TicketSummary
	SerialNumber *string                 `json:"serial_number"`
	Issue        string                  `json:"issue"`
	WarrantyDays int                     `json:"warranty_days"`
	CompletedAt  *time.Time              `json:"completed_at"`
	TotalPaid    decimal.Decimal         `json:"total_paid"`
	Outstanding  decimal.Decimal         `json:"outstanding"`
	History      []StatusHistoryResponse `json:"history"`
}

// StatusHistoryResponse represents one lifecycle step.
type StatusHistoryResponse struct {
	ID        string              `json:"id"`
	Status    domain.TicketStatus `json:"status"`
	Note      string              `json:"note,omitempty"`
	CreatedBy *string             `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
}
