package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// ExpenseFilter captures expense listing parameters.
type ExpenseFilter struct {
	Category *string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ExpenseRepository persists operating expenses. Deletes are soft so
// historic metrics for closed periods stay reproducible.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]domain.Expense, error)
	SoftDelete(ctx context.Context, id string) error
	SumInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type expenseRepository struct {
	q Querier
}

// NewExpenseRepository builds repository.
func NewExpenseRepository(q Querier) ExpenseRepository {
	return &expenseRepository{q: q}
}

const expenseColumns = `id, description, category, amount, created_by, created_at, deleted_at`

func (r *expenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	const query = `
        INSERT INTO expenses (description, category, amount, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		expense.Description,
		expense.Category,
		expense.Amount,
		expense.CreatedBy,
	).Scan(&expense.ID, &expense.CreatedAt)
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id=$1 AND deleted_at IS NULL`
	var expense domain.Expense
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&expense.ID,
		&expense.Description,
		&expense.Category,
		&expense.Amount,
		&expense.CreatedBy,
		&expense.CreatedAt,
		&expense.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]domain.Expense, error) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
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

	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		expenseColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Expense
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(
			&expense.ID,
			&expense.Description,
			&expense.Category,
			&expense.Amount,
			&expense.CreatedBy,
			&expense.CreatedAt,
			&expense.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, expense)
	}
	return result, rows.Err()
}

func (r *expenseRepository) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE expenses SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *expenseRepository) SumInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0) FROM expenses
        WHERE deleted_at IS NULL AND created_at >= $1 AND created_at <= $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
