package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/events"
	"github.com/fixhub/repairshop/internal/repository"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// Period names a predefined reporting range.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// DateRange is a closed reporting interval.
type DateRange struct {
	From time.Time
	To   time.Time
}

// FinancialMetrics is the aggregated money picture for a range.
type FinancialMetrics struct {
	Range         DateRange       `json:"range"`
	Revenue       decimal.Decimal `json:"revenue"`
	Refunds       decimal.Decimal `json:"refunds"`
	Expenses      decimal.Decimal `json:"expenses"`
	InventoryLoss decimal.Decimal `json:"inventory_loss"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	GrossMargin   decimal.Decimal `json:"gross_margin"`
}

// MetricsComparison pairs current metrics with the immediately
// preceding period of equal length.
type MetricsComparison struct {
	Current       FinancialMetrics `json:"current"`
	Previous      FinancialMetrics `json:"previous"`
	RevenueChange decimal.Decimal  `json:"revenue_change"`
	ProfitChange  decimal.Decimal  `json:"profit_change"`
}

// FinanceService owns cash movements, expenses and metrics aggregation.
// Every payment or refund writes its journal entry in the same
// transaction; the journal is the source of truth for refund totals.
type FinanceService struct {
	repos      *repository.Repositories
	txRunner   repository.TxRunner
	dispatcher events.Dispatcher
}

// NewFinanceService constructs the service.
func NewFinanceService(repos *repository.Repositories, txRunner repository.TxRunner, dispatcher events.Dispatcher) *FinanceService {
	return &FinanceService{
		repos:      repos,
		txRunner:   txRunner,
		dispatcher: dispatcher,
	}
}

// PaymentInput describes a cash movement. Amount is always positive;
// refund direction is encoded by the operation, not the sign.
type PaymentInput struct {
	Amount    decimal.Decimal
	Method    domain.PaymentMethod
	Reference string
	Reason    string
}

// ExpenseInput describes an operating cost.
type ExpenseInput struct {
	Description string
	Category    string
	Amount      decimal.Decimal
}

// RecordCashPayment records a customer payment against a ticket along
// with its PAYMENT journal entry. The ticket's paid flag flips once the
// outstanding balance reaches zero.
func (s *FinanceService) RecordCashPayment(ctx context.Context, actor domain.Actor, ticketID string, input PaymentInput) (*domain.Payment, error) {
	payment, err := s.recordMovement(ctx, actor, ticketID, input, false)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.NewEvent(events.EventPaymentRecorded, ticketID, actor, events.PaymentRecordedPayload{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Method:    payment.Method,
	}))
	return payment, nil
}

// RecordCashRefund records a refund as a negative payment row with a
// REFUND journal entry.
func (s *FinanceService) RecordCashRefund(ctx context.Context, actor domain.Actor, ticketID string, input PaymentInput) (*domain.Payment, error) {
	return s.recordMovement(ctx, actor, ticketID, input, true)
}

func (s *FinanceService) recordMovement(ctx context.Context, actor domain.Actor, ticketID string, input PaymentInput, refund bool) (*domain.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	method := input.Method
	if method == "" {
		method = domain.PaymentMethodCash
	}

	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	payments, err := s.repos.Payments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	amount := input.Amount
	entryType := domain.JournalTypePayment
	if refund {
		amount = amount.Neg()
		entryType = domain.JournalTypeRefund
	}

	payment := &domain.Payment{
		TicketID:    ticket.ID,
		Amount:      amount,
		Method:      method,
		Reference:   strings.TrimSpace(input.Reference),
		Reason:      strings.TrimSpace(input.Reason),
		PerformedBy: actor.ID,
	}

	err = s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		outstanding := domain.Outstanding(ticket, append(payments, *payment))
		if paid := outstanding.IsZero(); paid != ticket.Paid {
			ticket.Paid = paid
			if err := r.Tickets.Update(ctx, ticket); err != nil {
				return err
			}
		}

		ticketRef := ticket.ID
		return r.Journal.Create(ctx, &domain.JournalEntry{
			Type:          entryType,
			Amount:        input.Amount,
			Description:   payment.Reason,
			ReferenceType: domain.JournalRefPayment,
			ReferenceID:   payment.ID,
			TicketID:      &ticketRef,
			CreatedBy:     actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return payment, nil
}

// ListPayments returns the money movements on a ticket.
func (s *FinanceService) ListPayments(ctx context.Context, ticketID string) ([]domain.Payment, error) {
	if _, err := s.repos.Tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.MapError(err)
	}
	payments, err := s.repos.Payments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return payments, nil
}

// RecordExpense records an operating cost with its EXPENSE journal entry.
func (s *FinanceService) RecordExpense(ctx context.Context, actor domain.Actor, input ExpenseInput) (*domain.Expense, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may record expenses")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}

	expense := &domain.Expense{
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Amount:      input.Amount,
		CreatedBy:   actor.ID,
	}
	if expense.Category == "" {
		expense.Category = "GENERAL"
	}

	err := s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Expenses.Create(ctx, expense); err != nil {
			return err
		}
		return r.Journal.Create(ctx, &domain.JournalEntry{
			Type:          domain.JournalTypeExpense,
			Amount:        expense.Amount,
			Description:   expense.Description,
			ReferenceType: domain.JournalRefExpense,
			ReferenceID:   expense.ID,
			CreatedBy:     actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense so it drops out of future
// aggregation windows.
func (s *FinanceService) DeleteExpense(ctx context.Context, actor domain.Actor, expenseID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete expenses")
	}
	if err := s.repos.Expenses.SoftDelete(ctx, expenseID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetFinancialMetrics aggregates the money picture for a range.
func (s *FinanceService) GetFinancialMetrics(ctx context.Context, rng DateRange) (*FinancialMetrics, error) {
	if rng.To.Before(rng.From) {
		return nil, apperrors.NewValidationError("end of range precedes start", nil)
	}

	revenue, err := s.repos.Payments.SumRevenueInRange(ctx, rng.From, rng.To)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	refunds, err := s.repos.Journal.SumByTypeInRange(ctx, domain.JournalTypeRefund, rng.From, rng.To)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	expenses, err := s.repos.Expenses.SumInRange(ctx, rng.From, rng.To)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	loss, err := s.repos.InventoryTx.SumLossInRange(ctx, rng.From, rng.To)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	metrics := computeMetrics(rng, revenue, refunds, expenses, loss)
	return &metrics, nil
}

// GetFinancialMetricsWithComparison additionally aggregates the
// immediately preceding period of equal length and derives change
// percentages.
func (s *FinanceService) GetFinancialMetricsWithComparison(ctx context.Context, rng DateRange) (*MetricsComparison, error) {
	current, err := s.GetFinancialMetrics(ctx, rng)
	if err != nil {
		return nil, err
	}

	// Both range bounds are inclusive; the previous period ends just
	// before the current one starts so a boundary row counts once.
	length := rng.To.Sub(rng.From)
	prevRange := DateRange{From: rng.From.Add(-length), To: rng.From.Add(-time.Millisecond)}
	previous, err := s.GetFinancialMetrics(ctx, prevRange)
	if err != nil {
		return nil, err
	}

	return &MetricsComparison{
		Current:       *current,
		Previous:      *previous,
		RevenueChange: calculateChange(current.Revenue, previous.Revenue),
		ProfitChange:  calculateChange(current.NetProfit, previous.NetProfit),
	}, nil
}

// PeriodRange resolves a named period to a date range ending now.
// Daily, monthly and yearly are calendar-aligned; weekly is a rolling
// seven-day window.
func PeriodRange(period Period, now time.Time) (DateRange, error) {
	switch period {
	case PeriodDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return DateRange{From: start, To: now}, nil
	case PeriodWeekly:
		return DateRange{From: now.AddDate(0, 0, -7), To: now}, nil
	case PeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{From: start, To: now}, nil
	case PeriodYearly:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return DateRange{From: start, To: now}, nil
	default:
		return DateRange{}, apperrors.NewValidationError(fmt.Sprintf("unknown period %q", period), nil)
	}
}

var hundred = decimal.NewFromInt(100)

func computeMetrics(rng DateRange, revenue, refunds, expenses, loss decimal.Decimal) FinancialMetrics {
	grossProfit := revenue.Sub(refunds)
	netProfit := grossProfit.Sub(expenses).Sub(loss)

	grossMargin := decimal.Zero
	if !revenue.IsZero() {
		grossMargin = grossProfit.Div(revenue).Mul(hundred)
	}

	return FinancialMetrics{
		Range:         rng,
		Revenue:       revenue,
		Refunds:       refunds,
		Expenses:      expenses,
		InventoryLoss: loss,
		GrossProfit:   grossProfit,
		NetProfit:     netProfit,
		GrossMargin:   grossMargin,
	}
}

// calculateChange derives a percentage delta. A zero previous value
// yields +100% when the current value is positive, otherwise 0%.
func calculateChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

func (s *FinanceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
