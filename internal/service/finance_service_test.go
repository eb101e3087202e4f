package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixhub/repairshop/internal/domain"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

func TestRecordCashPayment_JournalPairAndPaidFlag(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)
	ticket := seedOpenTicket(t, store)
	store.tickets[ticket.ID].EstimatedPrice = decimal.NewFromInt(100)

	payment, err := svc.RecordCashPayment(context.Background(), staffActor, ticket.ID, PaymentInput{
		Amount: decimal.NewFromInt(60),
		Reason: "deposit",
	})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, domain.PaymentMethodCash, payment.Method)
	assert.False(t, store.tickets[ticket.ID].Paid)

	require.Len(t, store.journal, 1)
	assert.Equal(t, domain.JournalTypePayment, store.journal[0].Type)
	assert.True(t, store.journal[0].Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, payment.ID, store.journal[0].ReferenceID)

	_, err = svc.RecordCashPayment(context.Background(), staffActor, ticket.ID, PaymentInput{
		Amount: decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	assert.True(t, store.tickets[ticket.ID].Paid)
	assert.Len(t, store.journal, 2)
}

func TestRecordCashRefund(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)
	ticket := seedOpenTicket(t, store)

	refund, err := svc.RecordCashRefund(context.Background(), adminActor, ticket.ID, PaymentInput{
		Amount: decimal.NewFromInt(30),
		Reason: "goodwill",
	})
	require.NoError(t, err)

	// Payment row carries the direction; the journal stays positive.
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(-30)))
	require.Len(t, store.journal, 1)
	assert.Equal(t, domain.JournalTypeRefund, store.journal[0].Type)
	assert.True(t, store.journal[0].Amount.Equal(decimal.NewFromInt(30)))
}

func TestRecordMovement_Validation(t *testing.T) {
	_, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)

	_, err := svc.RecordCashPayment(context.Background(), staffActor, "missing", PaymentInput{
		Amount: decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	_, err = svc.RecordCashPayment(context.Background(), staffActor, "missing", PaymentInput{
		Amount: decimal.Zero,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestRecordExpense(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)

	_, err := svc.RecordExpense(context.Background(), staffActor, ExpenseInput{
		Description: "rent", Amount: decimal.NewFromInt(500),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	expense, err := svc.RecordExpense(context.Background(), adminActor, ExpenseInput{
		Description: "rent", Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "GENERAL", expense.Category)

	require.Len(t, store.journal, 1)
	assert.Equal(t, domain.JournalTypeExpense, store.journal[0].Type)
	assert.Equal(t, expense.ID, store.journal[0].ReferenceID)
}

func TestComputeMetrics(t *testing.T) {
	rng := DateRange{From: time.Now().Add(-24 * time.Hour), To: time.Now()}
	metrics := computeMetrics(rng,
		decimal.NewFromInt(1000), // revenue
		decimal.NewFromInt(200),  // refunds
		decimal.NewFromInt(150),  // expenses
		decimal.NewFromInt(50),   // inventory loss
	)

	assert.True(t, metrics.GrossProfit.Equal(decimal.NewFromInt(800)))
	assert.True(t, metrics.NetProfit.Equal(decimal.NewFromInt(600)))
	assert.True(t, metrics.GrossMargin.Equal(decimal.NewFromInt(80)))

	zero := computeMetrics(rng, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.True(t, zero.GrossMargin.IsZero())
}

func TestGetFinancialMetrics_FromStore(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)
	ticket := seedOpenTicket(t, store)

	_, err := svc.RecordCashPayment(context.Background(), staffActor, ticket.ID, PaymentInput{
		Amount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	_, err = svc.RecordCashRefund(context.Background(), adminActor, ticket.ID, PaymentInput{
		Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	_, err = svc.RecordExpense(context.Background(), adminActor, ExpenseInput{
		Description: "solder wire", Amount: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	rng := DateRange{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)}
	metrics, err := svc.GetFinancialMetrics(context.Background(), rng)
	require.NoError(t, err)

	assert.True(t, metrics.Revenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, metrics.Refunds.Equal(decimal.NewFromInt(50)))
	assert.True(t, metrics.Expenses.Equal(decimal.NewFromInt(20)))
	assert.True(t, metrics.GrossProfit.Equal(decimal.NewFromInt(250)))
	assert.True(t, metrics.NetProfit.Equal(decimal.NewFromInt(230)))
}

func TestGetFinancialMetrics_InvalidRange(t *testing.T) {
	_, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)

	now := time.Now()
	_, err := svc.GetFinancialMetrics(context.Background(), DateRange{From: now, To: now.Add(-time.Hour)})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)

	daily, err := PeriodRange(PeriodDaily, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 18, 0, 0, 0, 0, time.UTC), daily.From)
	assert.Equal(t, now, daily.To)

	// Weekly is a rolling window, not calendar-aligned.
	weekly, err := PeriodRange(PeriodWeekly, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), weekly.From)

	monthly, err := PeriodRange(PeriodMonthly, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), monthly.From)

	yearly, err := PeriodRange(PeriodYearly, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), yearly.From)

	_, err = PeriodRange(Period("quarterly"), now)
	require.Error(t, err)
}

func TestCalculateChange(t *testing.T) {
	cases := []struct {
		name     string
		current  int64
		previous int64
		want     string
	}{
		{"growth", 150, 100, "50"},
		{"decline", 50, 100, "-50"},
		{"zero previous positive current", 10, 0, "100"},
		{"both zero", 0, 0, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateChange(decimal.NewFromInt(tc.current), decimal.NewFromInt(tc.previous))
			want, err := decimal.NewFromString(tc.want)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}

func TestGetFinancialMetricsWithComparison(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)
	ticket := seedOpenTicket(t, store)

	_, err := svc.RecordCashPayment(context.Background(), staffActor, ticket.ID, PaymentInput{
		Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	// Previous window is empty, so revenue change resolves to +100%.
	rng := DateRange{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)}
	cmp, err := svc.GetFinancialMetricsWithComparison(context.Background(), rng)
	require.NoError(t, err)

	assert.True(t, cmp.Current.Revenue.Equal(decimal.NewFromInt(500)))
	assert.True(t, cmp.Previous.Revenue.IsZero())
	assert.True(t, cmp.RevenueChange.Equal(decimal.NewFromInt(100)))
	assert.True(t, cmp.Previous.Range.To.Before(rng.From))
}

func TestGetFinancialMetricsWithComparison_BoundaryRowCountsOnce(t *testing.T) {
	store, repos, tx := newTestEnv()
	svc := NewFinanceService(repos, tx, nil)
	ticket := seedOpenTicket(t, store)

	rng := DateRange{From: time.Now().Add(-time.Hour), To: time.Now()}

	// A payment stamped exactly on the period boundary belongs to the
	// current window only.
	store.payments = append(store.payments, domain.Payment{
		ID:        "boundary",
		TicketID:  ticket.ID,
		Amount:    decimal.NewFromInt(75),
		Method:    domain.PaymentMethodCash,
		CreatedAt: rng.From,
	})

	cmp, err := svc.GetFinancialMetricsWithComparison(context.Background(), rng)
	require.NoError(t, err)

	assert.True(t, cmp.Current.Revenue.Equal(decimal.NewFromInt(75)))
	assert.True(t, cmp.Previous.Revenue.IsZero())
}
