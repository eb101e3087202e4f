package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// JournalFilter captures journal listing parameters.
type JournalFilter struct {
	Type   *domain.JournalEntryType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// JournalRepository persists the append-only financial journal.
type JournalRepository interface {
	Create(ctx context.Context, entry *domain.JournalEntry) error
	List(ctx context.Context, filter JournalFilter) ([]domain.JournalEntry, error)
	SumByTypeInRange(ctx context.Context, entryType domain.JournalEntryType, from, to time.Time) (decimal.Decimal, error)
}

type journalRepository struct {
	q Querier
}

// NewJournalRepository builds repository.
func NewJournalRepository(q Querier) JournalRepository {
	return &journalRepository{q: q}
}

const journalColumns = `id, type, amount, description, reference_type, reference_id, ticket_id, created_by, created_at`

func (r *journalRepository) Create(ctx context.Context, entry *domain.JournalEntry) error {
	const query = `
        INSERT INTO journal_entries (type, amount, description, reference_type, reference_id, ticket_id, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		entry.Type,
		entry.Amount,
		entry.Description,
		entry.ReferenceType,
		entry.ReferenceID,
		entry.TicketID,
		entry.CreatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *journalRepository) List(ctx context.Context, filter JournalFilter) ([]domain.JournalEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		journalColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Type,
			&entry.Amount,
			&entry.Description,
			&entry.ReferenceType,
			&entry.ReferenceID,
			&entry.TicketID,
			&entry.CreatedBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *journalRepository) SumByTypeInRange(ctx context.Context, entryType domain.JournalEntryType, from, to time.Time) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0) FROM journal_entries
        WHERE type=$1 AND created_at >= $2 AND created_at <= $3`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, entryType, from, to).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
