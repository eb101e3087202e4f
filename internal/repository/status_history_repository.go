package repository

import (
	"context"

	"github.com/fixhub/repairshop/internal/domain"
)

// StatusHistoryRepository stores the append-only status trail. Entries
// are never edited or deleted.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	q Querier
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(q Querier) StatusHistoryRepository {
	return &statusHistoryRepository{q: q}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, status, note, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		entry.TicketID,
		entry.Status,
		entry.Note,
		entry.CreatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, ticket_id, status, note, created_by, created_at
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var entry domain.StatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Status,
			&entry.Note,
			&entry.CreatedBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
