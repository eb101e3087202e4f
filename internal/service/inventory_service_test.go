package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/repository"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

func seedOpenTicket(t *testing.T, store *fakeStore) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		TicketNumber:   "TKT-INV00001",
		TrackingCode:   "TRACKINV0001",
		CustomerID:     "cust-1",
		DeviceBrand:    "Asus",
		DeviceModel:    "ROG",
		Issue:          "no power",
		Status:         domain.TicketStatusInProgress,
		Priority:       domain.TicketPriorityNormal,
		EstimatedPrice: decimal.NewFromInt(200),
	}
	require.NoError(t, (&fakeTicketRepo{store}).Create(context.Background(), ticket))
	return ticket
}

func seedPart(t *testing.T, store *fakeStore, qty int, price int64) *domain.Part {
	t.Helper()
	part := &domain.Part{
		Name:         "power supply",
		SKU:          "PSU-650",
		Quantity:     qty,
		ReorderLevel: 1,
		UnitPrice:    decimal.NewFromInt(price),
	}
	require.NoError(t, (&fakePartRepo{store}).Create(context.Background(), part))
	return part
}

func TestAddAndRemovePartOnTicket(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)
	ticket := seedOpenTicket(t, store)
	part := seedPart(t, store, 5, 25)

	line, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 2, store.parts[part.ID].Quantity)

	require.Len(t, store.inventoryTx, 1)
	out := store.inventoryTx[0]
	assert.Equal(t, domain.InventoryTxOut, out.Type)
	assert.Equal(t, -3, out.QtyChange)
	assert.True(t, out.Cost.Equal(decimal.NewFromInt(75)))

	err = svc.RemovePartFromTicket(context.Background(), staffActor, ticket.ID, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, store.parts[part.ID].Quantity)
	assert.Empty(t, store.ticketParts)

	require.Len(t, store.inventoryTx, 2)
	in := store.inventoryTx[1]
	assert.Equal(t, domain.InventoryTxIn, in.Type)
	assert.Equal(t, 3, in.QtyChange)

	// Ledger nets out to zero for the part.
	_, sum, err := svc.PartLedger(context.Background(), part.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestAddPartToTicket_UpsertsExistingLine(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)
	ticket := seedOpenTicket(t, store)
	part := seedPart(t, store, 10, 25)

	first, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 2)
	require.NoError(t, err)
	second, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	require.Len(t, store.ticketParts, 1)
	assert.Equal(t, 5, store.parts[part.ID].Quantity)
	assert.Len(t, store.inventoryTx, 2)
}

func TestAddPartToTicket_InsufficientStock(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)
	ticket := seedOpenTicket(t, store)
	part := seedPart(t, store, 2, 25)

	_, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 3)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "DOMAIN_RULE_VIOLATION", domainErr.Code)
	assert.Contains(t, domainErr.Message, "insufficient stock")

	// Rejection leaves no trace.
	assert.Equal(t, 2, store.parts[part.ID].Quantity)
	assert.Empty(t, store.ticketParts)
	assert.Empty(t, store.inventoryTx)
}

func TestAddPartToTicket_NegativeStockPolicy(t *testing.T) {
	store, repos, tx := newTestEnv()
	pol := domain.DefaultPolicy()
	pol.AllowNegativeStock = true
	svc := NewInventoryService(repos, tx, staticPolicy(pol), nil)
	ticket := seedOpenTicket(t, store)
	part := seedPart(t, store, 2, 25)

	_, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, -1, store.parts[part.ID].Quantity)
}

func TestAddPartToTicket_TerminalTicket(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)
	ticket := seedOpenTicket(t, store)
	store.tickets[ticket.ID].Status = domain.TicketStatusCancelled
	part := seedPart(t, store, 5, 25)

	_, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 1)
	require.Error(t, err)
	assert.Equal(t, "DOMAIN_RULE_VIOLATION", apperrors.ToDomainError(err).Code)
}

func TestRemovePartFromTicket_WrongTicket(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)
	ticket := seedOpenTicket(t, store)
	other := seedOpenTicket(t, store)
	part := seedPart(t, store, 5, 25)

	line, err := svc.AddPartToTicket(context.Background(), staffActor, ticket.ID, part.ID, 1)
	require.NoError(t, err)

	err = svc.RemovePartFromTicket(context.Background(), staffActor, other.ID, line.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestCreatePart_InitialStockTransaction(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)

	part, err := svc.CreatePart(context.Background(), adminActor, PartCreateInput{
		Name:      "ssd 1tb",
		SKU:       "SSD-1T",
		Quantity:  4,
		UnitPrice: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	require.Len(t, store.inventoryTx, 1)
	opening := store.inventoryTx[0]
	assert.Equal(t, part.ID, opening.PartID)
	assert.Equal(t, domain.InventoryTxIn, opening.Type)
	assert.Equal(t, 4, opening.QtyChange)
	assert.True(t, opening.Cost.Equal(decimal.NewFromInt(320)))

	empty, err := svc.CreatePart(context.Background(), adminActor, PartCreateInput{
		Name:      "thermal paste",
		UnitPrice: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Quantity)
	assert.Len(t, store.inventoryTx, 1)
}

func TestListParts_LowStockFilter(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewInventoryService(repos, tx, staticPolicy(domain.DefaultPolicy()), nil)

	low := &domain.Part{Name: "fan", Quantity: 1, ReorderLevel: 2, UnitPrice: decimal.NewFromInt(10)}
	ok := &domain.Part{Name: "ram", Quantity: 9, ReorderLevel: 2, UnitPrice: decimal.NewFromInt(40)}
	require.NoError(t, (&fakePartRepo{store}).Create(context.Background(), low))
	require.NoError(t, (&fakePartRepo{store}).Create(context.Background(), ok))

	parts, err := svc.ListParts(context.Background(), repository.PartFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, low.ID, parts[0].ID)
}
