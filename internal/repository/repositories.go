package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every repository bound to one Querier. Services
// receive a pool-bound instance for reads and transaction-bound
// instances through TxRunner for atomic write groups.
type Repositories struct {
	Customers     CustomerRepository
	Tickets       TicketRepository
	StatusHistory StatusHistoryRepository
	Parts         PartRepository
	TicketParts   TicketPartRepository
	InventoryTx   InventoryTransactionRepository
	Payments      PaymentRepository
	Returns       ReturnRepository
	Journal       JournalRepository
	Expenses      ExpenseRepository
}

// NewRepositories binds all repositories to the given querier.
func NewRepositories(q Querier) *Repositories {
	return &Repositories{
		Customers:     NewCustomerRepository(q),
		Tickets:       NewTicketRepository(q),
		StatusHistory: NewStatusHistoryRepository(q),
		Parts:         NewPartRepository(q),
		TicketParts:   NewTicketPartRepository(q),
		InventoryTx:   NewInventoryTransactionRepository(q),
		Payments:      NewPaymentRepository(q),
		Returns:       NewReturnRepository(q),
		Journal:       NewJournalRepository(q),
		Expenses:      NewExpenseRepository(q),
	}
}

// TxRunner executes a callback with repositories bound to a single
// transaction. The callback's writes either all apply or all roll back.
type TxRunner interface {
	Run(ctx context.Context, fn func(r *Repositories) error) error
}

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner on a pgx pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (r *pgxTxRunner) Run(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
