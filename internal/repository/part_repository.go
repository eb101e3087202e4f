package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fixhub/repairshop/internal/domain"
)

// PartFilter captures part catalogue listing parameters.
type PartFilter struct {
	SearchTerm *string
	LowStock   bool
	Limit      int
	Offset     int
}

// PartRepository persists the part catalogue. AdjustQuantity is the only
// mutation path for stock counts, so every change can be paired with an
// inventory transaction by the caller.
type PartRepository interface {
	Create(ctx context.Context, part *domain.Part) error
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	List(ctx context.Context, filter PartFilter) ([]domain.Part, error)
	AdjustQuantity(ctx context.Context, id string, delta int) (int, error)
}

type partRepository struct {
	q Querier
}

// NewPartRepository instantiates repository.
func NewPartRepository(q Querier) PartRepository {
	return &partRepository{q: q}
}

func (r *partRepository) Create(ctx context.Context, part *domain.Part) error {
	const query = `
        INSERT INTO parts (name, sku, quantity, reorder_level, unit_price)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		part.Name,
		part.SKU,
		part.Quantity,
		part.ReorderLevel,
		part.UnitPrice,
	).Scan(&part.ID, &part.CreatedAt, &part.UpdatedAt)
}

func (r *partRepository) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	const query = `
        SELECT id, name, sku, quantity, reorder_level, unit_price, created_at, updated_at, deleted_at
        FROM parts WHERE id=$1 AND deleted_at IS NULL`
	var part domain.Part
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&part.ID,
		&part.Name,
		&part.SKU,
		&part.Quantity,
		&part.ReorderLevel,
		&part.UnitPrice,
		&part.CreatedAt,
		&part.UpdatedAt,
		&part.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) List(ctx context.Context, filter PartFilter) ([]domain.Part, error) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(sku) LIKE %s)", placeholder, placeholder))
	}
	if filter.LowStock {
		clauses = append(clauses, "quantity <= reorder_level")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, name, sku, quantity, reorder_level, unit_price, created_at, updated_at, deleted_at
        FROM parts WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Part
	for rows.Next() {
		var part domain.Part
		if err := rows.Scan(
			&part.ID,
			&part.Name,
			&part.SKU,
			&part.Quantity,
			&part.ReorderLevel,
			&part.UnitPrice,
			&part.CreatedAt,
			&part.UpdatedAt,
			&part.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, part)
	}
	return result, rows.Err()
}

func (r *partRepository) AdjustQuantity(ctx context.Context, id string, delta int) (int, error) {
	const query = `
        UPDATE parts SET quantity = quantity + $1, updated_at=NOW()
        WHERE id=$2 AND deleted_at IS NULL
        RETURNING quantity`
	var quantity int
	if err := r.q.QueryRow(ctx, query, delta, id).Scan(&quantity); err != nil {
		if err == pgx.ErrNoRows {
			return 0, pgx.ErrNoRows
		}
		return 0, err
	}
	return quantity, nil
}
