package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEffectivePrice(t *testing.T) {
	ticket := &Ticket{EstimatedPrice: dec(100)}
	assert.True(t, EffectivePrice(ticket).Equal(dec(100)))

	final := dec(120)
	ticket.FinalPrice = &final
	assert.True(t, EffectivePrice(ticket).Equal(dec(120)))
}

func TestTotalPaid_RefundsNetOut(t *testing.T) {
	payments := []Payment{
		{Amount: dec(60)},
		{Amount: dec(40)},
		{Amount: dec(-30)},
	}
	assert.True(t, TotalPaid(payments).Equal(dec(70)))
}

func TestOutstanding(t *testing.T) {
	ticket := &Ticket{EstimatedPrice: dec(100)}

	assert.True(t, Outstanding(ticket, nil).Equal(dec(100)))
	assert.True(t, Outstanding(ticket, []Payment{{Amount: dec(60)}}).Equal(dec(40)))
	assert.True(t, Outstanding(ticket, []Payment{{Amount: dec(60)}, {Amount: dec(40)}}).IsZero())

	// Overpayment floors at zero instead of going negative.
	assert.True(t, Outstanding(ticket, []Payment{{Amount: dec(150)}}).IsZero())
}

func TestBalanceOf(t *testing.T) {
	ticket := &Ticket{EstimatedPrice: dec(100)}

	status := BalanceOf(ticket, []Payment{{Amount: dec(60)}})
	assert.True(t, status.TotalPaid.Equal(dec(60)))
	assert.True(t, status.Outstanding.Equal(dec(40)))
	assert.False(t, status.Paid)

	status = BalanceOf(ticket, []Payment{{Amount: dec(60)}, {Amount: dec(40)}})
	assert.True(t, status.Outstanding.IsZero())
	assert.True(t, status.Paid)
}
