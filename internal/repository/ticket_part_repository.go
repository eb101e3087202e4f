package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fixhub/repairshop/internal/domain"
)

// TicketPartRepository persists consumed-part lines on tickets.
type TicketPartRepository interface {
	Create(ctx context.Context, tp *domain.TicketPart) error
	GetByID(ctx context.Context, id string) (*domain.TicketPart, error)
	FindByTicketAndPart(ctx context.Context, ticketID, partID string) (*domain.TicketPart, error)
	IncrementQuantity(ctx context.Context, id string, delta int) (int, error)
	Delete(ctx context.Context, id string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketPart, error)
}

type ticketPartRepository struct {
	q Querier
}

// NewTicketPartRepository instantiates repository.
func NewTicketPartRepository(q Querier) TicketPartRepository {
	return &ticketPartRepository{q: q}
}

func (r *ticketPartRepository) Create(ctx context.Context, tp *domain.TicketPart) error {
	const query = `
        INSERT INTO ticket_parts (ticket_id, part_id, quantity)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query, tp.TicketID, tp.PartID, tp.Quantity).Scan(&tp.ID, &tp.CreatedAt)
}

func (r *ticketPartRepository) GetByID(ctx context.Context, id string) (*domain.TicketPart, error) {
	const query = `
        SELECT id, ticket_id, part_id, quantity, created_at
        FROM ticket_parts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketPartRepository) FindByTicketAndPart(ctx context.Context, ticketID, partID string) (*domain.TicketPart, error) {
	const query = `
        SELECT id, ticket_id, part_id, quantity, created_at
        FROM ticket_parts WHERE ticket_id=$1 AND part_id=$2`
	var tp domain.TicketPart
	err := r.q.QueryRow(ctx, query, ticketID, partID).Scan(
		&tp.ID, &tp.TicketID, &tp.PartID, &tp.Quantity, &tp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func (r *ticketPartRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TicketPart, error) {
	var tp domain.TicketPart
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&tp.ID, &tp.TicketID, &tp.PartID, &tp.Quantity, &tp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func (r *ticketPartRepository) IncrementQuantity(ctx context.Context, id string, delta int) (int, error) {
	const query = `
        UPDATE ticket_parts SET quantity = quantity + $1 WHERE id=$2
        RETURNING quantity`
	var quantity int
	if err := r.q.QueryRow(ctx, query, delta, id).Scan(&quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

func (r *ticketPartRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM ticket_parts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketPartRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketPart, error) {
	const query = `
        SELECT id, ticket_id, part_id, quantity, created_at
        FROM ticket_parts WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketPart
	for rows.Next() {
		var tp domain.TicketPart
		if err := rows.Scan(&tp.ID, &tp.TicketID, &tp.PartID, &tp.Quantity, &tp.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tp)
	}
	return result, rows.Err()
}
