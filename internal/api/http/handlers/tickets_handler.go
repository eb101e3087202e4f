package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fixhub/repairshop/internal/api/dto"
	"github.com/fixhub/repairshop/internal/auth"
	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/service"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// TicketsHandler manages ticket intake and lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	finance *service.FinanceService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, finance *service.FinanceService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, finance: finance}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		CustomerID:     req.CustomerID,
		DeviceBrand:    req.DeviceBrand,
		DeviceModel:    req.DeviceModel,
		SerialNumber:   req.SerialNumber,
		Issue:          req.Issue,
		Priority:       req.Priority,
		EstimatedPrice: req.EstimatedPrice,
		WarrantyDays:   req.WarrantyDays,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListTickets(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.tickets.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// GetTicketByNumber GET /tickets/number/:ticketNumber.
func (h *TicketsHandler) GetTicketByNumber(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicketByNumber(c.Context(), c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// GetAllowedTransitions GET /tickets/:id/transitions.
func (h *TicketsHandler) GetAllowedTransitions(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	transitions, err := h.tickets.AllowedTransitions(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transitions})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), actor, c.Params("id"), service.StatusUpdateInput{
		Status:   req.Status,
		Note:     req.Note,
		Override: req.Override,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	if err := h.tickets.DeleteTicket(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// RecordPayment POST /tickets/:id/payments.
func (h *TicketsHandler) RecordPayment(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	payment, err := h.finance.RecordCashPayment(c.Context(), actor, c.Params("id"), service.PaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": paymentResponse(payment)})
}

// ListPayments GET /tickets/:id/payments.
func (h *TicketsHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.finance.ListPayments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, paymentResponse(&payments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		TrackingCode:   ticket.TrackingCode,
		CustomerID:     ticket.CustomerID,
		DeviceBrand:    ticket.DeviceBrand,
		DeviceModel:    ticket.DeviceModel,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		EstimatedPrice: ticket.EstimatedPrice,
		FinalPrice:     ticket.FinalPrice,
		Paid:           ticket.Paid,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	history := make([]dto.StatusHistoryResponse, 0, len(detail.History))
	for _, entry := range detail.History {
		history = append(history, dto.StatusHistoryResponse{
			ID:        entry.ID,
			Status:    entry.Status,
			Note:      entry.Note,
			CreatedBy: entry.CreatedBy,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(detail.Ticket),
		SerialNumber:  detail.Ticket.SerialNumber,
		Issue:         detail.Ticket.Issue,
		WarrantyDays:  detail.Ticket.WarrantyDays,
		CompletedAt:   detail.Ticket.CompletedAt,
		TotalPaid:     detail.Balance.TotalPaid,
		Outstanding:   detail.Balance.Outstanding,
		History:       history,
	}
}

func paymentResponse(payment *domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          payment.ID,
		TicketID:    payment.TicketID,
		Amount:      payment.Amount,
		Method:      payment.Method,
		Reference:   payment.Reference,
		Reason:      payment.Reason,
		PerformedBy: payment.PerformedBy,
		CreatedAt:   payment.CreatedAt,
	}
}
