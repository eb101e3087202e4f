package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// PaymentRepository stores immutable payment rows. There is no update or
// delete: corrections are new rows.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Payment, error)
	SumRevenueInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type paymentRepository struct {
	q Querier
}

// NewPaymentRepository builds repository.
func NewPaymentRepository(q Querier) PaymentRepository {
	return &paymentRepository{q: q}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (ticket_id, amount, method, reference, reason, performed_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		payment.TicketID,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.Reason,
		payment.PerformedBy,
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (r *paymentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Payment, error) {
	const query = `
        SELECT id, ticket_id, amount, method, reference, reason, performed_by, created_at
        FROM payments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.TicketID,
			&payment.Amount,
			&payment.Method,
			&payment.Reference,
			&payment.Reason,
			&payment.PerformedBy,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}

// SumRevenueInRange totals positive payments only; refund rows are
// negative and excluded.
func (r *paymentRepository) SumRevenueInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0)
        FROM payments
        WHERE amount > 0 AND created_at >= $1 AND created_at <= $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
