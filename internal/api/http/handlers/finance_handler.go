package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fixhub/repairshop/internal/api/dto"
	"github.com/fixhub/repairshop/internal/auth"
	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/service"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// FinanceHandler manages expense and metrics endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs handler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// RecordExpense POST /expenses.
func (h *FinanceHandler) RecordExpense(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.RecordExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	expense, err := h.finance.RecordExpense(c.Context(), actor, service.ExpenseInput{
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": expenseResponse(expense)})
}

// DeleteExpense DELETE /expenses/:id.
func (h *FinanceHandler) DeleteExpense(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	if err := h.finance.DeleteExpense(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// GetMetrics GET /finance/metrics. Accepts either a named period or an
// explicit start_date/end_date pair; compare=true adds the preceding
// period of equal length.
func (h *FinanceHandler) GetMetrics(c *fiber.Ctx) error {
	rng, err := resolveRange(c)
	if err != nil {
		return err
	}

	if c.QueryBool("compare") {
		comparison, err := h.finance.GetFinancialMetricsWithComparison(c.Context(), rng)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": comparison})
	}

	metrics, err := h.finance.GetFinancialMetrics(c.Context(), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

func resolveRange(c *fiber.Ctx) (service.DateRange, error) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr != "" || endStr != "" {
		start := parseTime(startStr)
		end := parseTime(endStr)
		if start == nil || end == nil {
			return service.DateRange{}, apperrors.NewValidationError("start_date and end_date must be RFC3339 timestamps", nil)
		}
		return service.DateRange{From: *start, To: *end}, nil
	}

	period := service.Period(c.Query("period", string(service.PeriodMonthly)))
	return service.PeriodRange(period, time.Now())
}

func expenseResponse(expense *domain.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:          expense.ID,
		Description: expense.Description,
		Category:    expense.Category,
		Amount:      expense.Amount,
		CreatedBy:   expense.CreatedBy,
		CreatedAt:   expense.CreatedAt,
	}
}
