package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/repository"
)

// In-memory repository fakes. They mirror the storage semantics the
// services rely on: pgx.ErrNoRows on missing rows and a 23505 PgError
// when the active-return uniqueness is violated.

type fakeStore struct {
	tickets     map[string]*domain.Ticket
	history     []domain.StatusHistory
	customers   map[string]*domain.Customer
	parts       map[string]*domain.Part
	ticketParts map[string]*domain.TicketPart
	inventoryTx []domain.InventoryTransaction
	payments    []domain.Payment
	returns     map[string]*domain.Return
	journal     []domain.JournalEntry
	expenses    map[string]*domain.Expense
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets:     map[string]*domain.Ticket{},
		customers:   map[string]*domain.Customer{},
		parts:       map[string]*domain.Part{},
		ticketParts: map[string]*domain.TicketPart{},
		returns:     map[string]*domain.Return{},
		expenses:    map[string]*domain.Expense{},
	}
}

func (s *fakeStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Customers:     &fakeCustomerRepo{s},
		Tickets:       &fakeTicketRepo{s},
		StatusHistory: &fakeHistoryRepo{s},
		Parts:         &fakePartRepo{s},
		TicketParts:   &fakeTicketPartRepo{s},
		InventoryTx:   &fakeInventoryTxRepo{s},
		Payments:      &fakePaymentRepo{s},
		Returns:       &fakeReturnRepo{s},
		Journal:       &fakeJournalRepo{s},
		Expenses:      &fakeExpenseRepo{s},
	}
}

// fakeTxRunner replays the callback against the same store; rollback is
// not simulated because the tests under it only assert the happy path
// or fail before any write.
type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(repos *repository.Repositories) error) error {
	return fn(r.store.repositories())
}

func newTestEnv() (*fakeStore, *repository.Repositories, repository.TxRunner) {
	store := newFakeStore()
	return store, store.repositories(), &fakeTxRunner{store: store}
}

type fakeTicketRepo struct{ s *fakeStore }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.s.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.s.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.s.tickets[id]
	if !ok || ticket.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByTicketNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, ticket := range r.s.tickets {
		if ticket.TicketNumber == number && ticket.DeletedAt == nil {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.s.tickets {
		if ticket.DeletedAt != nil {
			continue
		}
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) SoftDelete(_ context.Context, id string) error {
	ticket, ok := r.s.tickets[id]
	if !ok || ticket.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	ticket.DeletedAt = &now
	return nil
}

type fakeHistoryRepo struct{ s *fakeStore }

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.StatusHistory) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusHistory, error) {
	var result []domain.StatusHistory
	for _, entry := range r.s.history {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeCustomerRepo struct{ s *fakeStore }

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	customer.ID = uuid.NewString()
	customer.CreatedAt = time.Now()
	copied := *customer
	r.s.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	customer, ok := r.s.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

type fakePartRepo struct{ s *fakeStore }

func (r *fakePartRepo) Create(_ context.Context, part *domain.Part) error {
	part.ID = uuid.NewString()
	part.CreatedAt = time.Now()
	part.UpdatedAt = part.CreatedAt
	copied := *part
	r.s.parts[part.ID] = &copied
	return nil
}

func (r *fakePartRepo) GetByID(_ context.Context, id string) (*domain.Part, error) {
	part, ok := r.s.parts[id]
	if !ok || part.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	copied := *part
	return &copied, nil
}

func (r *fakePartRepo) List(_ context.Context, filter repository.PartFilter) ([]domain.Part, error) {
	var result []domain.Part
	for _, part := range r.s.parts {
		if part.DeletedAt != nil {
			continue
		}
		if filter.LowStock && !part.LowStock() {
			continue
		}
		if filter.SearchTerm != nil &&
			!strings.Contains(strings.ToLower(part.Name), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		result = append(result, *part)
	}
	return result, nil
}

func (r *fakePartRepo) AdjustQuantity(_ context.Context, id string, delta int) (int, error) {
	part, ok := r.s.parts[id]
	if !ok || part.DeletedAt != nil {
		return 0, pgx.ErrNoRows
	}
	part.Quantity += delta
	return part.Quantity, nil
}

type fakeTicketPartRepo struct{ s *fakeStore }

func (r *fakeTicketPartRepo) Create(_ context.Context, tp *domain.TicketPart) error {
	tp.ID = uuid.NewString()
	tp.CreatedAt = time.Now()
	copied := *tp
	r.s.ticketParts[tp.ID] = &copied
	return nil
}

func (r *fakeTicketPartRepo) GetByID(_ context.Context, id string) (*domain.TicketPart, error) {
	tp, ok := r.s.ticketParts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *tp
	return &copied, nil
}

func (r *fakeTicketPartRepo) FindByTicketAndPart(_ context.Context, ticketID, partID string) (*domain.TicketPart, error) {
	for _, tp := range r.s.ticketParts {
		if tp.TicketID == ticketID && tp.PartID == partID {
			copied := *tp
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketPartRepo) IncrementQuantity(_ context.Context, id string, delta int) (int, error) {
	tp, ok := r.s.ticketParts[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	tp.Quantity += delta
	return tp.Quantity, nil
}

func (r *fakeTicketPartRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.ticketParts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.ticketParts, id)
	return nil
}

func (r *fakeTicketPartRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketPart, error) {
	var result []domain.TicketPart
	for _, tp := range r.s.ticketParts {
		if tp.TicketID == ticketID {
			result = append(result, *tp)
		}
	}
	return result, nil
}

type fakeInventoryTxRepo struct{ s *fakeStore }

func (r *fakeInventoryTxRepo) Create(_ context.Context, tx *domain.InventoryTransaction) error {
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()
	r.s.inventoryTx = append(r.s.inventoryTx, *tx)
	return nil
}

func (r *fakeInventoryTxRepo) ListByPart(_ context.Context, partID string) ([]domain.InventoryTransaction, error) {
	var result []domain.InventoryTransaction
	for _, tx := range r.s.inventoryTx {
		if tx.PartID == partID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *fakeInventoryTxRepo) SumQtyByPart(_ context.Context, partID string) (int, error) {
	sum := 0
	for _, tx := range r.s.inventoryTx {
		if tx.PartID == partID {
			sum += tx.QtyChange
		}
	}
	return sum, nil
}

func (r *fakeInventoryTxRepo) SumLossInRange(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range r.s.inventoryTx {
		if tx.QtyChange < 0 && !tx.CreatedAt.Before(from) && !tx.CreatedAt.After(to) {
			sum = sum.Add(tx.Cost.Abs())
		}
	}
	return sum, nil
}

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now()
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

func (r *fakePaymentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Payment, error) {
	var result []domain.Payment
	for _, payment := range r.s.payments {
		if payment.TicketID == ticketID {
			result = append(result, payment)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) SumRevenueInRange(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, payment := range r.s.payments {
		if payment.Amount.IsPositive() && !payment.CreatedAt.Before(from) && !payment.CreatedAt.After(to) {
			sum = sum.Add(payment.Amount)
		}
	}
	return sum, nil
}

type fakeReturnRepo struct{ s *fakeStore }

func (r *fakeReturnRepo) Create(_ context.Context, ret *domain.Return) error {
	for _, existing := range r.s.returns {
		if existing.TicketID == ret.TicketID && existing.Status.Active() {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_returns_active_ticket"}
		}
	}
	ret.ID = uuid.NewString()
	ret.CreatedAt = time.Now()
	copied := *ret
	r.s.returns[ret.ID] = &copied
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, id string) (*domain.Return, error) {
	ret, ok := r.s.returns[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ret
	return &copied, nil
}

func (r *fakeReturnRepo) FindActiveByTicket(_ context.Context, ticketID string) (*domain.Return, error) {
	for _, ret := range r.s.returns {
		if ret.TicketID == ticketID && ret.Status.Active() {
			copied := *ret
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeReturnRepo) Update(_ context.Context, ret *domain.Return) error {
	if _, ok := r.s.returns[ret.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ret
	r.s.returns[ret.ID] = &copied
	return nil
}

func (r *fakeReturnRepo) List(_ context.Context, filter repository.ReturnFilter) ([]domain.Return, error) {
	var result []domain.Return
	for _, ret := range r.s.returns {
		if filter.TicketID != nil && ret.TicketID != *filter.TicketID {
			continue
		}
		if filter.Status != nil && ret.Status != *filter.Status {
			continue
		}
		result = append(result, *ret)
	}
	return result, nil
}

func (r *fakeReturnRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.returns[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.returns, id)
	return nil
}

func (r *fakeReturnRepo) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, ret := range r.s.returns {
		if ret.Status == domain.ReturnStatusPending {
			count++
		}
	}
	return count, nil
}

type fakeJournalRepo struct{ s *fakeStore }

func (r *fakeJournalRepo) Create(_ context.Context, entry *domain.JournalEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.s.journal = append(r.s.journal, *entry)
	return nil
}

func (r *fakeJournalRepo) List(_ context.Context, filter repository.JournalFilter) ([]domain.JournalEntry, error) {
	var result []domain.JournalEntry
	for _, entry := range r.s.journal {
		if filter.Type != nil && entry.Type != *filter.Type {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (r *fakeJournalRepo) SumByTypeInRange(_ context.Context, entryType domain.JournalEntryType, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, entry := range r.s.journal {
		if entry.Type == entryType && !entry.CreatedAt.Before(from) && !entry.CreatedAt.After(to) {
			sum = sum.Add(entry.Amount)
		}
	}
	return sum, nil
}

type fakeExpenseRepo struct{ s *fakeStore }

func (r *fakeExpenseRepo) Create(_ context.Context, expense *domain.Expense) error {
	expense.ID = uuid.NewString()
	expense.CreatedAt = time.Now()
	copied := *expense
	r.s.expenses[expense.ID] = &copied
	return nil
}

func (r *fakeExpenseRepo) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	expense, ok := r.s.expenses[id]
	if !ok || expense.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	copied := *expense
	return &copied, nil
}

func (r *fakeExpenseRepo) List(_ context.Context, _ repository.ExpenseFilter) ([]domain.Expense, error) {
	var result []domain.Expense
	for _, expense := range r.s.expenses {
		if expense.DeletedAt == nil {
			result = append(result, *expense)
		}
	}
	return result, nil
}

func (r *fakeExpenseRepo) SoftDelete(_ context.Context, id string) error {
	expense, ok := r.s.expenses[id]
	if !ok || expense.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	expense.DeletedAt = &now
	return nil
}

func (r *fakeExpenseRepo) SumInRange(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, expense := range r.s.expenses {
		if expense.DeletedAt == nil && !expense.CreatedAt.Before(from) && !expense.CreatedAt.After(to) {
			sum = sum.Add(expense.Amount)
		}
	}
	return sum, nil
}
