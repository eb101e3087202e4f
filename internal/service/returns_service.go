package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/events"
	"github.com/fixhub/repairshop/internal/policy"
	"github.com/fixhub/repairshop/internal/repository"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// ReturnsService owns the post-repair return workflow: creation under
// the policy window, approval with restock and refund, and the
// pending-return management operations.
type ReturnsService struct {
	repos      *repository.Repositories
	txRunner   repository.TxRunner
	policies   policy.Provider
	dispatcher events.Dispatcher
}

// NewReturnsService constructs the service.
func NewReturnsService(repos *repository.Repositories, txRunner repository.TxRunner, policies policy.Provider, dispatcher events.Dispatcher) *ReturnsService {
	return &ReturnsService{
		repos:      repos,
		txRunner:   txRunner,
		policies:   policies,
		dispatcher: dispatcher,
	}
}

// ReturnCreateInput describes a return request.
type ReturnCreateInput struct {
	TicketID     string
	Reason       string
	RefundAmount decimal.Decimal
}

// CreateReturn validates and persists a return request. Depending on
// the approval policy the return is created PENDING, or APPROVED with
// the ticket moved to RETURNED in the same transaction. The active-return
// check runs immediately before insert; the storage unique index closes
// the remaining race window and surfaces as a conflict.
func (s *ReturnsService) CreateReturn(ctx context.Context, actor domain.Actor, input ReturnCreateInput) (*domain.Return, error) {
	if actor.Role == domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technicians may not create returns")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}
	if input.RefundAmount.IsNegative() {
		return nil, apperrors.NewValidationError("refund_amount cannot be negative", nil)
	}

	ticket, err := s.repos.Tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != domain.TicketStatusRepaired && ticket.Status != domain.TicketStatusCompleted {
		return nil, apperrors.NewDomainRuleViolation(
			fmt.Sprintf("ticket in %s is not eligible for return", ticket.Status), nil)
	}

	pol, err := s.policies.Resolve(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if pol.ReturnWindowDays > 0 && ticket.CompletedAt != nil {
		deadline := ticket.CompletedAt.AddDate(0, 0, pol.ReturnWindowDays)
		if time.Now().After(deadline) {
			return nil, apperrors.NewDomainRuleViolation("return window expired", map[string]any{
				"completed_at": ticket.CompletedAt,
				"window_days":  pol.ReturnWindowDays,
			})
		}
	}

	if _, err := s.repos.Returns.FindActiveByTicket(ctx, ticket.ID); err == nil {
		return nil, apperrors.NewConflict("an active return already exists for this ticket", map[string]any{"ticket_id": ticket.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	effective := domain.EffectivePrice(ticket)
	if input.RefundAmount.GreaterThan(effective) {
		return nil, apperrors.NewDomainRuleViolation("refund_amount exceeds ticket price", map[string]any{
			"refund_amount":   input.RefundAmount,
			"effective_price": effective,
		})
	}
	if !pol.AllowPartialRefunds && input.RefundAmount.IsPositive() && input.RefundAmount.LessThan(effective) {
		return nil, apperrors.NewDomainRuleViolation("partial refunds are not allowed", nil)
	}

	ret := &domain.Return{
		TicketID:             ticket.ID,
		Status:               domain.ReturnStatusPending,
		Reason:               strings.TrimSpace(input.Reason),
		RefundAmount:         input.RefundAmount,
		OriginalTicketStatus: ticket.Status,
		CreatedBy:            actor.ID,
	}
	autoApprove := !pol.RequireReturnApproval
	if autoApprove {
		now := time.Now().UTC()
		handledBy := actor.ID
		ret.Status = domain.ReturnStatusApproved
		ret.HandledBy = &handledBy
		ret.HandledAt = &now
	}

	err = s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Returns.Create(ctx, ret); err != nil {
			return err
		}
		createdBy := actor.ID
		if autoApprove {
			ticket.Status = domain.TicketStatusReturned
			if err := r.Tickets.Update(ctx, ticket); err != nil {
				return err
			}
			return r.StatusHistory.Create(ctx, &domain.StatusHistory{
				TicketID:  ticket.ID,
				Status:    domain.TicketStatusReturned,
				Note:      "return auto-approved: " + ret.Reason,
				CreatedBy: &createdBy,
			})
		}
		return r.StatusHistory.Create(ctx, &domain.StatusHistory{
			TicketID:  ticket.ID,
			Status:    ticket.Status,
			Note:      "return requested: " + ret.Reason,
			CreatedBy: &createdBy,
		})
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("an active return already exists for this ticket", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReturnCreated, ticket.ID, actor, events.ReturnPayload{
		ReturnID:     ret.ID,
		Status:       ret.Status,
		RefundAmount: ret.RefundAmount,
	}))
	if autoApprove {
		s.publishEvent(ctx, events.NewEvent(events.EventReturnApproved, ticket.ID, actor, events.ReturnPayload{
			ReturnID:     ret.ID,
			Status:       ret.Status,
			RefundAmount: ret.RefundAmount,
		}))
	}
	return ret, nil
}

// ApproveReturn finalizes a pending return: the ticket moves to
// RETURNED, consumed parts are restocked when policy enables it, and
// the refund is recorded as a negative payment with its journal entry —
// all in one transaction.
func (s *ReturnsService) ApproveReturn(ctx context.Context, actor domain.Actor, returnID string) (*domain.Return, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may approve returns")
	}

	ret, err := s.repos.Returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ret.Status != domain.ReturnStatusPending {
		return nil, apperrors.NewDomainRuleViolation("return is not pending", map[string]any{"status": ret.Status})
	}

	ticket, err := s.repos.Tickets.GetByID(ctx, ret.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != domain.TicketStatusRepaired && ticket.Status != domain.TicketStatusCompleted {
		return nil, apperrors.NewDomainRuleViolation(
			fmt.Sprintf("ticket in %s can no longer be returned", ticket.Status), nil)
	}

	pol, err := s.policies.Resolve(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now().UTC()
	handledBy := actor.ID
	ret.Status = domain.ReturnStatusApproved
	ret.HandledBy = &handledBy
	ret.HandledAt = &now

	err = s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Returns.Update(ctx, ret); err != nil {
			return err
		}

		ticket.Status = domain.TicketStatusReturned
		if err := r.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		createdBy := actor.ID
		if err := r.StatusHistory.Create(ctx, &domain.StatusHistory{
			TicketID:  ticket.ID,
			Status:    domain.TicketStatusReturned,
			Note:      "return approved: " + ret.Reason,
			CreatedBy: &createdBy,
		}); err != nil {
			return err
		}

		if pol.AutoRestockReturns {
			if err := s.restockTicketParts(ctx, r, ticket.ID, ret.ID, actor.ID); err != nil {
				return err
			}
		}

		if ret.RefundAmount.IsPositive() {
			payment := &domain.Payment{
				TicketID:    ticket.ID,
				Amount:      ret.RefundAmount.Neg(),
				Method:      domain.PaymentMethodCash,
				Reason:      "return refund",
				PerformedBy: actor.ID,
			}
			if err := r.Payments.Create(ctx, payment); err != nil {
				return err
			}
			ticketID := ticket.ID
			return r.Journal.Create(ctx, &domain.JournalEntry{
				Type:          domain.JournalTypeRefund,
				Amount:        ret.RefundAmount,
				Description:   "refund for return " + ret.ID,
				ReferenceType: domain.JournalRefReturn,
				ReferenceID:   ret.ID,
				TicketID:      &ticketID,
				CreatedBy:     actor.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReturnApproved, ticket.ID, actor, events.ReturnPayload{
		ReturnID:     ret.ID,
		Status:       ret.Status,
		RefundAmount: ret.RefundAmount,
	}))
	return ret, nil
}

// restockTicketParts replays the consumed part lines back into stock as
// IN transactions tied to the return.
func (s *ReturnsService) restockTicketParts(ctx context.Context, r *repository.Repositories, ticketID, returnID, actorID string) error {
	lines, err := r.TicketParts.ListByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		part, err := r.Parts.GetByID(ctx, line.PartID)
		if err != nil {
			return err
		}
		if _, err := r.Parts.AdjustQuantity(ctx, line.PartID, line.Quantity); err != nil {
			return err
		}
		tid := ticketID
		rid := returnID
		createdBy := actorID
		if err := r.InventoryTx.Create(ctx, &domain.InventoryTransaction{
			PartID:    line.PartID,
			Type:      domain.InventoryTxIn,
			QtyChange: line.Quantity,
			Cost:      part.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Reason:    reasonReturnRestock,
			TicketID:  &tid,
			ReturnID:  &rid,
			CreatedBy: &createdBy,
		}); err != nil {
			return err
		}
	}
	return nil
}

// GetReturn fetches a return request.
func (s *ReturnsService) GetReturn(ctx context.Context, returnID string) (*domain.Return, error) {
	ret, err := s.repos.Returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ret, nil
}

// ListReturns returns paginated return requests.
func (s *ReturnsService) ListReturns(ctx context.Context, filter repository.ReturnFilter) ([]domain.Return, error) {
	returns, err := s.repos.Returns.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return returns, nil
}

// PendingCount reports how many returns await approval.
func (s *ReturnsService) PendingCount(ctx context.Context) (int, error) {
	count, err := s.repos.Returns.CountPending(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// DeleteReturn withdraws a pending return. Approved returns are
// immutable history and cannot be deleted.
func (s *ReturnsService) DeleteReturn(ctx context.Context, actor domain.Actor, returnID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete returns")
	}
	ret, err := s.repos.Returns.GetByID(ctx, returnID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if ret.Status != domain.ReturnStatusPending {
		return apperrors.NewDomainRuleViolation("only pending returns can be deleted", map[string]any{"status": ret.Status})
	}
	if err := s.repos.Returns.Delete(ctx, ret.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *ReturnsService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
