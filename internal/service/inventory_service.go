package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/events"
	"github.com/fixhub/repairshop/internal/policy"
	"github.com/fixhub/repairshop/internal/repository"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

const (
	reasonTicketConsumption = "ticket consumption"
	reasonManualRemoval     = "manual removal"
	reasonReturnRestock     = "return restock"
)

// InventoryService owns part consumption on tickets and the stock
// ledger. Every stock mutation writes a paired inventory transaction in
// the same database transaction.
type InventoryService struct {
	repos      *repository.Repositories
	txRunner   repository.TxRunner
	policies   policy.Provider
	dispatcher events.Dispatcher
}

// NewInventoryService constructs the service.
func NewInventoryService(repos *repository.Repositories, txRunner repository.TxRunner, policies policy.Provider, dispatcher events.Dispatcher) *InventoryService {
	return &InventoryService{
		repos:      repos,
		txRunner:   txRunner,
		policies:   policies,
		dispatcher: dispatcher,
	}
}

// PartCreateInput describes a new stock item.
type PartCreateInput struct {
	Name         string
	SKU          string
	Quantity     int
	ReorderLevel int
	UnitPrice    decimal.Decimal
}

// AddPartToTicket consumes stock against a ticket: the part line is
// upserted, the cached quantity decremented and an OUT transaction
// recorded, all atomically.
func (s *InventoryService) AddPartToTicket(ctx context.Context, actor domain.Actor, ticketID, partID string, quantity int) (*domain.TicketPart, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", nil)
	}

	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status.Terminal() {
		return nil, apperrors.NewDomainRuleViolation(
			fmt.Sprintf("cannot modify parts on a %s ticket", ticket.Status), nil)
	}

	part, err := s.repos.Parts.GetByID(ctx, partID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	pol, err := s.policies.Resolve(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !pol.AllowNegativeStock && part.Quantity < quantity {
		return nil, apperrors.NewDomainRuleViolation("insufficient stock", map[string]any{
			"part_id":   part.ID,
			"available": part.Quantity,
			"requested": quantity,
		})
	}

	cost := part.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	var line *domain.TicketPart

	err = s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		existing, err := r.TicketParts.FindByTicketAndPart(ctx, ticketID, partID)
		switch {
		case err == nil:
			newQty, err := r.TicketParts.IncrementQuantity(ctx, existing.ID, quantity)
			if err != nil {
				return err
			}
			existing.Quantity = newQty
			line = existing
		case errors.Is(err, pgx.ErrNoRows):
			line = &domain.TicketPart{TicketID: ticketID, PartID: partID, Quantity: quantity}
			if err := r.TicketParts.Create(ctx, line); err != nil {
				return err
			}
		default:
			return err
		}

		newStock, err := r.Parts.AdjustQuantity(ctx, partID, -quantity)
		if err != nil {
			return err
		}
		if newStock < 0 && !pol.AllowNegativeStock {
			return apperrors.NewDomainRuleViolation("insufficient stock", map[string]any{
				"part_id":   partID,
				"requested": quantity,
			})
		}

		createdBy := actor.ID
		return r.InventoryTx.Create(ctx, &domain.InventoryTransaction{
			PartID:    partID,
			Type:      domain.InventoryTxOut,
			QtyChange: -quantity,
			Cost:      cost,
			Reason:    reasonTicketConsumption,
			TicketID:  &ticketID,
			CreatedBy: &createdBy,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketPartAdded, ticketID, actor, events.TicketPartPayload{
		PartID:   partID,
		Quantity: quantity,
	}))
	return line, nil
}

// RemovePartFromTicket reverses a consumed line: the line is deleted,
// stock restored and an IN transaction recorded, all atomically.
func (s *InventoryService) RemovePartFromTicket(ctx context.Context, actor domain.Actor, ticketID, ticketPartID string) error {
	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if ticket.Status.Terminal() {
		return apperrors.NewDomainRuleViolation(
			fmt.Sprintf("cannot modify parts on a %s ticket", ticket.Status), nil)
	}

	line, err := s.repos.TicketParts.GetByID(ctx, ticketPartID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if line.TicketID != ticketID {
		return apperrors.NewNotFound("ticket part", map[string]any{"ticket_part_id": ticketPartID})
	}

	part, err := s.repos.Parts.GetByID(ctx, line.PartID)
	if err != nil {
		return apperrors.MapError(err)
	}
	cost := part.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

	err = s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.TicketParts.Delete(ctx, line.ID); err != nil {
			return err
		}
		if _, err := r.Parts.AdjustQuantity(ctx, line.PartID, line.Quantity); err != nil {
			return err
		}
		createdBy := actor.ID
		return r.InventoryTx.Create(ctx, &domain.InventoryTransaction{
			PartID:    line.PartID,
			Type:      domain.InventoryTxIn,
			QtyChange: line.Quantity,
			Cost:      cost,
			Reason:    reasonManualRemoval,
			TicketID:  &ticketID,
			CreatedBy: &createdBy,
		})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketPartRemoved, ticketID, actor, events.TicketPartPayload{
		PartID:   line.PartID,
		Quantity: line.Quantity,
	}))
	return nil
}

// ListTicketParts returns the consumed lines on a ticket.
func (s *InventoryService) ListTicketParts(ctx context.Context, ticketID string) ([]domain.TicketPart, error) {
	lines, err := s.repos.TicketParts.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lines, nil
}

// CreatePart registers a stock item. An opening IN transaction records
// the initial quantity so the ledger reconciles from day one.
func (s *InventoryService) CreatePart(ctx context.Context, actor domain.Actor, input PartCreateInput) (*domain.Part, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.Quantity < 0 {
		return nil, apperrors.NewValidationError("quantity cannot be negative", nil)
	}
	if input.UnitPrice.IsNegative() {
		return nil, apperrors.NewValidationError("unit_price cannot be negative", nil)
	}

	part := &domain.Part{
		Name:         strings.TrimSpace(input.Name),
		SKU:          strings.TrimSpace(input.SKU),
		Quantity:     input.Quantity,
		ReorderLevel: input.ReorderLevel,
		UnitPrice:    input.UnitPrice,
	}

	err := s.txRunner.Run(ctx, func(r *repository.Repositories) error {
		if err := r.Parts.Create(ctx, part); err != nil {
			return err
		}
		if part.Quantity == 0 {
			return nil
		}
		createdBy := actor.ID
		return r.InventoryTx.Create(ctx, &domain.InventoryTransaction{
			PartID:    part.ID,
			Type:      domain.InventoryTxIn,
			QtyChange: part.Quantity,
			Cost:      part.UnitPrice.Mul(decimal.NewFromInt(int64(part.Quantity))),
			Reason:    "initial stock",
			CreatedBy: &createdBy,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return part, nil
}

// GetPart fetches a stock item.
func (s *InventoryService) GetPart(ctx context.Context, partID string) (*domain.Part, error) {
	part, err := s.repos.Parts.GetByID(ctx, partID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return part, nil
}

// ListParts returns stock items, optionally only those at or below
// their reorder level.
func (s *InventoryService) ListParts(ctx context.Context, filter repository.PartFilter) ([]domain.Part, error) {
	parts, err := s.repos.Parts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return parts, nil
}

// PartLedger returns the transaction history and reconciled quantity
// sum for a part.
func (s *InventoryService) PartLedger(ctx context.Context, partID string) ([]domain.InventoryTransaction, int, error) {
	txs, err := s.repos.InventoryTx.ListByPart(ctx, partID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	sum, err := s.repos.InventoryTx.SumQtyByPart(ctx, partID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return txs, sum, nil
}

func (s *InventoryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
