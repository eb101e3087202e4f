package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fixhub/repairshop/internal/api/dto"
	"github.com/fixhub/repairshop/internal/auth"
	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/repository"
	"github.com/fixhub/repairshop/internal/service"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// PartsHandler manages the part catalogue and ticket-part endpoints.
type PartsHandler struct {
	inventory *service.InventoryService
}

// NewPartsHandler constructs handler.
func NewPartsHandler(inventory *service.InventoryService) *PartsHandler {
	return &PartsHandler{inventory: inventory}
}

// CreatePart POST /parts.
func (h *PartsHandler) CreatePart(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.CreatePartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	part, err := h.inventory.CreatePart(c.Context(), actor, service.PartCreateInput{
		Name:         req.Name,
		SKU:          req.SKU,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": partResponse(part)})
}

// ListParts GET /parts.
func (h *PartsHandler) ListParts(c *fiber.Ctx) error {
	filter := repository.PartFilter{}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	filter.LowStock = c.QueryBool("low_stock")
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	parts, err := h.inventory.ListParts(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		items = append(items, partResponse(&parts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPart GET /parts/:id.
func (h *PartsHandler) GetPart(c *fiber.Ctx) error {
	part, err := h.inventory.GetPart(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": partResponse(part)})
}

// GetPartLedger GET /parts/:id/transactions.
func (h *PartsHandler) GetPartLedger(c *fiber.Ctx) error {
	txs, sum, err := h.inventory.PartLedger(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.InventoryTransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, inventoryTxResponse(&txs[i]))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"transactions": items,
		"quantity_sum": sum,
	}})
}

// AddTicketPart POST /tickets/:id/parts.
func (h *PartsHandler) AddTicketPart(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.AddTicketPartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PartID == "" {
		return apperrors.NewValidationError("part_id required", nil)
	}

	line, err := h.inventory.AddPartToTicket(c.Context(), actor, c.Params("id"), req.PartID, req.Quantity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketPartResponse(line)})
}

// RemoveTicketPart DELETE /tickets/:id/parts/:ticketPartId.
func (h *PartsHandler) RemoveTicketPart(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	if err := h.inventory.RemovePartFromTicket(c.Context(), actor, c.Params("id"), c.Params("ticketPartId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

// ListTicketParts GET /tickets/:id/parts.
func (h *PartsHandler) ListTicketParts(c *fiber.Ctx) error {
	lines, err := h.inventory.ListTicketParts(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketPartResponse, 0, len(lines))
	for i := range lines {
		items = append(items, ticketPartResponse(&lines[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func partResponse(part *domain.Part) dto.PartResponse {
	return dto.PartResponse{
		ID:           part.ID,
		Name:         part.Name,
		SKU:          part.SKU,
		Quantity:     part.Quantity,
		ReorderLevel: part.ReorderLevel,
		UnitPrice:    part.UnitPrice,
		LowStock:     part.LowStock(),
		CreatedAt:    part.CreatedAt,
		UpdatedAt:    part.UpdatedAt,
	}
}

func ticketPartResponse(line *domain.TicketPart) dto.TicketPartResponse {
	return dto.TicketPartResponse{
		ID:        line.ID,
		TicketID:  line.TicketID,
		PartID:    line.PartID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt,
	}
}

func inventoryTxResponse(tx *domain.InventoryTransaction) dto.InventoryTransactionResponse {
	return dto.InventoryTransactionResponse{
		ID:        tx.ID,
		PartID:    tx.PartID,
		Type:      tx.Type,
		QtyChange: tx.QtyChange,
		Cost:      tx.Cost,
		Reason:    tx.Reason,
		TicketID:  tx.TicketID,
		ReturnID:  tx.ReturnID,
		CreatedAt: tx.CreatedAt,
	}
}
