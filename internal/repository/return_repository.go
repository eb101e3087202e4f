package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fixhub/repairshop/internal/domain"
)

// ReturnFilter captures return listing parameters.
type ReturnFilter struct {
	TicketID *string
	Status   *domain.ReturnStatus
	Limit    int
	Offset   int
}

// ReturnRepository persists return requests. Creation races on the
// active-per-ticket uniqueness constraint; callers translate that
// violation into a conflict.
type ReturnRepository interface {
	Create(ctx context.Context, ret *domain.Return) error
	GetByID(ctx context.Context, id string) (*domain.Return, error)
	FindActiveByTicket(ctx context.Context, ticketID string) (*domain.Return, error)
	Update(ctx context.Context, ret *domain.Return) error
	List(ctx context.Context, filter ReturnFilter) ([]domain.Return, error)
	Delete(ctx context.Context, id string) error
	CountPending(ctx context.Context) (int, error)
}

type returnRepository struct {
	q Querier
}

// NewReturnRepository builds repository.
func NewReturnRepository(q Querier) ReturnRepository {
	return &returnRepository{q: q}
}

const returnColumns = `id, ticket_id, status, reason, refund_amount, original_ticket_status,
       created_by, handled_by, handled_at, created_at`

func (r *returnRepository) Create(ctx context.Context, ret *domain.Return) error {
	const query = `
        INSERT INTO returns (ticket_id, status, reason, refund_amount, original_ticket_status, created_by, handled_by, handled_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		ret.TicketID,
		ret.Status,
		ret.Reason,
		ret.RefundAmount,
		ret.OriginalTicketStatus,
		ret.CreatedBy,
		ret.HandledBy,
		ret.HandledAt,
	).Scan(&ret.ID, &ret.CreatedAt)
}

func (r *returnRepository) GetByID(ctx context.Context, id string) (*domain.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *returnRepository) FindActiveByTicket(ctx context.Context, ticketID string) (*domain.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns
        WHERE ticket_id=$1 AND status IN ('PENDING','APPROVED')`
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *returnRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Return, error) {
	var ret domain.Return
	if err := scanReturn(r.q.QueryRow(ctx, query, arg), &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) Update(ctx context.Context, ret *domain.Return) error {
	const query = `
        UPDATE returns SET status=$1, handled_by=$2, handled_at=$3 WHERE id=$4`
	cmd, err := r.q.Exec(ctx, query, ret.Status, ret.HandledBy, ret.HandledAt, ret.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *returnRepository) List(ctx context.Context, filter ReturnFilter) ([]domain.Return, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM returns WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		returnColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Return
	for rows.Next() {
		var ret domain.Return
		if err := scanReturn(rows, &ret); err != nil {
			return nil, err
		}
		result = append(result, ret)
	}
	return result, rows.Err()
}

func (r *returnRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM returns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *returnRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM returns WHERE status='PENDING'`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanReturn(row pgx.Row, ret *domain.Return) error {
	return row.Scan(
		&ret.ID,
		&ret.TicketID,
		&ret.Status,
		&ret.Reason,
		&ret.RefundAmount,
		&ret.OriginalTicketStatus,
		&ret.CreatedBy,
		&ret.HandledBy,
		&ret.HandledAt,
		&ret.CreatedAt,
	)
}
