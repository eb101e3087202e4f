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

// ReturnsHandler manages return workflow endpoints.
type ReturnsHandler struct {
	returns *service.ReturnsService
}

// NewReturnsHandler constructs handler.
func NewReturnsHandler(returns *service.ReturnsService) *ReturnsHandler {
	return &ReturnsHandler{returns: returns}
}

// CreateReturn POST /returns.
func (h *ReturnsHandler) CreateReturn(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.CreateReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}

	ret, err := h.returns.CreateReturn(c.Context(), actor, service.ReturnCreateInput{
		TicketID:     req.TicketID,
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": returnResponse(ret)})
}

// ListReturns GET /returns.
func (h *ReturnsHandler) ListReturns(c *fiber.Ctx) error {
	filter := repository.ReturnFilter{}
	if ticketID := c.Query("ticket_id"); ticketID != "" {
		filter.TicketID = &ticketID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.ReturnStatus(statusStr)
		filter.Status = &status
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	returns, err := h.returns.ListReturns(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ReturnResponse, 0, len(returns))
	for i := range returns {
		items = append(items, returnResponse(&returns[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /returns/stats.
func (h *ReturnsHandler) Stats(c *fiber.Ctx) error {
	pending, err := h.returns.PendingCount(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"pending_count": pending}})
}

// GetReturn GET /returns/:id.
func (h *ReturnsHandler) GetReturn(c *fiber.Ctx) error {
	ret, err := h.returns.GetReturn(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnResponse(ret)})
}

// ApproveReturn POST /returns/:id/approve.
func (h *ReturnsHandler) ApproveReturn(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	ret, err := h.returns.ApproveReturn(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnResponse(ret)})
}

// DeleteReturn DELETE /returns/:id.
func (h *ReturnsHandler) DeleteReturn(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	if err := h.returns.DeleteReturn(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func returnResponse(ret *domain.Return) dto.ReturnResponse {
	return dto.ReturnResponse{
		ID:                   ret.ID,
		TicketID:             ret.TicketID,
		Status:               ret.Status,
		Reason:               ret.Reason,
		RefundAmount:         ret.RefundAmount,
		OriginalTicketStatus: ret.OriginalTicketStatus,
		CreatedBy:            ret.CreatedBy,
		HandledBy:            ret.HandledBy,
		HandledAt:            ret.HandledAt,
		CreatedAt:            ret.CreatedAt,
	}
}
