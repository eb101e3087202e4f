package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// InventoryTransactionRepository stores the append-only stock ledger.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *domain.InventoryTransaction) error
	ListByPart(ctx context.Context, partID string) ([]domain.InventoryTransaction, error)
	SumQtyByPart(ctx context.Context, partID string) (int, error)
	SumLossInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type inventoryTxRepository struct {
	q Querier
}

// NewInventoryTransactionRepository builds repository.
func NewInventoryTransactionRepository(q Querier) InventoryTransactionRepository {
	return &inventoryTxRepository{q: q}
}

func (r *inventoryTxRepository) Create(ctx context.Context, tx *domain.InventoryTransaction) error {
	const query = `
        INSERT INTO inventory_transactions (part_id, type, qty_change, cost, reason, ticket_id, return_id, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		tx.PartID,
		tx.Type,
		tx.QtyChange,
		tx.Cost,
		tx.Reason,
		tx.TicketID,
		tx.ReturnID,
		tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt)
}

func (r *inventoryTxRepository) ListByPart(ctx context.Context, partID string) ([]domain.InventoryTransaction, error) {
	const query = `
        SELECT id, part_id, type, qty_change, cost, reason, ticket_id, return_id, created_by, created_at
        FROM inventory_transactions WHERE part_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, partID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryTransaction
	for rows.Next() {
		var tx domain.InventoryTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.PartID,
			&tx.Type,
			&tx.QtyChange,
			&tx.Cost,
			&tx.Reason,
			&tx.TicketID,
			&tx.ReturnID,
			&tx.CreatedBy,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// SumQtyByPart reconciles the ledger total; the cached Part.quantity
// must match this value at all times.
func (r *inventoryTxRepository) SumQtyByPart(ctx context.Context, partID string) (int, error) {
	const query = `SELECT COALESCE(SUM(qty_change), 0) FROM inventory_transactions WHERE part_id=$1`
	var total int
	if err := r.q.QueryRow(ctx, query, partID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// SumLossInRange totals the absolute cost of outbound stock movement,
// the inventoryLoss input of the metrics aggregator.
func (r *inventoryTxRepository) SumLossInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(ABS(cost)), 0)
        FROM inventory_transactions
        WHERE qty_change < 0 AND created_at >= $1 AND created_at <= $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
