package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/events"
	"github.com/fixhub/repairshop/internal/lifecycle"
	"github.com/fixhub/repairshop/internal/repository"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// TicketService coordinates ticket intake and lifecycle workflows.
type TicketService struct {
	repos      *repository.Repositories
	txRunner   repository.TxRunner
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(repos *repository.Repositories, txRunner repository.TxRunner, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{
		repos:      repos,
		txRunner:   txRunner,
		dispatcher: dispatcher,
	}
}

// TicketCreateInput describes ticket intake payload.
type TicketCreateInput struct {
	CustomerID     string
	DeviceBrand    string
	DeviceModel    string
	SerialNumber   *string
	Issue          string
	Priority       domain.TicketPriority
	EstimatedPrice decimal.Decimal
	WarrantyDays   int
}

// StatusUpdateInput describes a lifecycle transition request.
type StatusUpdateInput struct {
	Status   domain.TicketStatus
	Note     string
	Override bool
}

// TicketListFilter describes ticket listing filters.
type TicketListFilter struct {
	CustomerID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketDetail bundles a ticket with its derived payment position.
type TicketDetail struct {
	Ticket  *domain.Ticket
	Balance domain.PaymentStatus
	History []domain.StatusHistory
}

// CreateTicket registers a new repair intake in RECEIVED.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.CustomerID) == "" {
		return nil, apperrors.NewValidationError("customer_id required", nil)
	}
	if strings.TrimSpace(input.DeviceBrand) == "" || strings.TrimSpace(input.DeviceModel) == "" {
		return nil, apperrors.NewValidationError("device_brand and device_model required", nil)
	}
	if strings.TrimSpace(input.Issue) == "" {
		return nil, apperrors.NewValidationError("issue required", nil)
	}
	if input.EstimatedPrice.IsNegative() {
		return nil, apperrors.NewValidationError("estimated_price cannot be negative", nil)
	}
	if input.WarrantyDays < 0 {
		return nil, apperrors.NewValidationError("warranty_days cannot be negative", nil)
	}
	if _, err := s.repos.Customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		TicketNumber:   generateTicketNumber(),
		TrackingCode:   generateTrackingCode(),
		CustomerID:     input.CustomerID,
		DeviceBrand:    strings.TrimSpace(input.DeviceBrand),
		DeviceModel:    strings.TrimSpace(input.DeviceModel),
		SerialNumber:   input.SerialNumber,
		Issue:          strings.TrimSpace(input.Issue),
		Status:         domain.TicketStatusReceived,
		Priority:       input.Priority,
		EstimatedPrice: input.EstimatedPrice,
		WarrantyDays:   input.WarrantyDays,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityNormal
	}
	if !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	err := s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		createdBy := actor.ID
		return r.StatusHistory.Create(ctx, &domain.StatusHistory{
			TicketID:  ticket.ID,
			Status:    domain.TicketStatusReceived,
			Note:      "ticket received",
			CreatedBy: &createdBy,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		TicketNumber: ticket.TicketNumber,
		TrackingCode: ticket.TrackingCode,
		CustomerID:   ticket.CustomerID,
		Priority:     ticket.Priority,
	}))
	return ticket, nil
}

// UpdateStatus moves a ticket through its lifecycle. Same-status
// requests are accepted without writing anything.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Actor, ticketID string, input StatusUpdateInput) (*domain.Ticket, error) {
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
	}

	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	payments, err := s.repos.Payments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	verdict := lifecycle.CanTransition(lifecycle.Context{
		Current:     ticket.Status,
		Target:      input.Status,
		Role:        actor.Role,
		Outstanding: domain.Outstanding(ticket, payments),
		Override:    input.Override,
	})
	if !verdict.Allowed {
		return nil, transitionError(verdict)
	}
	if ticket.Status == input.Status {
		return ticket, nil
	}

	oldStatus := ticket.Status
	ticket.Status = input.Status
	switch {
	case input.Status == domain.TicketStatusCompleted:
		now := time.Now().UTC()
		ticket.CompletedAt = &now
	case oldStatus == domain.TicketStatusCompleted:
		ticket.CompletedAt = nil
	}

	err = s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		createdBy := actor.ID
		return r.StatusHistory.Create(ctx, &domain.StatusHistory{
			TicketID:  ticket.ID,
			Status:    input.Status,
			Note:      input.Note,
			CreatedBy: &createdBy,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketStatusChanged, ticket.ID, actor, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: input.Status,
		Note:      input.Note,
	}))
	return ticket, nil
}

// GetTicket fetches a ticket with its balance and status history.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	payments, err := s.repos.Payments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.repos.StatusHistory.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{
		Ticket:  ticket,
		Balance: domain.BalanceOf(ticket, payments),
		History: history,
	}, nil
}

// ListTickets returns paginated tickets.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	tickets, err := s.repos.Tickets.ListWithFilter(ctx, repository.TicketFilter{
		CustomerID:  filter.CustomerID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// DeleteTicket soft-deletes a ticket. Admin only.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete tickets")
	}
	if err := s.repos.Tickets.SoftDelete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetTicketByNumber fetches a ticket by its human-facing number, the
// lookup the front desk uses when a customer quotes their receipt.
func (s *TicketService) GetTicketByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	ticket, err := s.repos.Tickets.GetByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// AllowedTransitions lists the targets the actor may move the ticket to.
func (s *TicketService) AllowedTransitions(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.TicketStatus, error) {
	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lifecycle.AllowedTransitionsForRole(ticket.Status, actor.Role), nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// transitionError renders a lifecycle rejection as a structured error.
// Permission rejections are forbidden; everything else is a business-rule
// rejection with the lifecycle code attached.
func transitionError(verdict lifecycle.Result) error {
	details := map[string]any{"code": string(verdict.Code)}
	if verdict.Code == lifecycle.CodeInsufficientPermissions {
		return apperrors.NewForbidden(verdict.Reason)
	}
	return apperrors.NewDomainRuleViolation(verdict.Reason, details)
}

func generateTicketNumber() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func generateTrackingCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
