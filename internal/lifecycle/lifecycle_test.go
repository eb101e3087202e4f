package lifecycle

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixhub/repairshop/internal/domain"
)

func TestCanTransition_Table(t *testing.T) {
	tests := []struct {
		name     string
		current  domain.TicketStatus
		target   domain.TicketStatus
		role     domain.Role
		allowed  bool
		wantCode RejectionCode
	}{
		{"received to in_progress", domain.TicketStatusReceived, domain.TicketStatusInProgress, domain.RoleTechnician, true, ""},
		{"in_progress to repaired", domain.TicketStatusInProgress, domain.TicketStatusRepaired, domain.RoleTechnician, true, ""},
		{"waiting back to in_progress", domain.TicketStatusWaitingForParts, domain.TicketStatusInProgress, domain.RoleStaff, true, ""},
		{"repaired to completed", domain.TicketStatusRepaired, domain.TicketStatusCompleted, domain.RoleStaff, true, ""},
		{"received straight to repaired", domain.TicketStatusReceived, domain.TicketStatusRepaired, domain.RoleAdmin, false, CodeInvalidTransition},
		{"completed is terminal", domain.TicketStatusCompleted, domain.TicketStatusInProgress, domain.RoleAdmin, false, CodeTerminalState},
		{"cancelled is terminal", domain.TicketStatusCancelled, domain.TicketStatusInProgress, domain.RoleAdmin, false, CodeTerminalState},
		{"returned is terminal", domain.TicketStatusReturned, domain.TicketStatusReceived, domain.RoleAdmin, false, CodeTerminalState},
		{"returned requires return flow", domain.TicketStatusRepaired, domain.TicketStatusReturned, domain.RoleAdmin, false, CodeReturnFlowRequired},
		{"technician cannot cancel", domain.TicketStatusReceived, domain.TicketStatusCancelled, domain.RoleTechnician, false, CodeInsufficientPermissions},
		{"technician cannot complete", domain.TicketStatusRepaired, domain.TicketStatusCompleted, domain.RoleTechnician, false, CodeInsufficientPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanTransition(Context{
				Current:     tt.current,
				Target:      tt.target,
				Role:        tt.role,
				Outstanding: decimal.Zero,
			})
			assert.Equal(t, tt.allowed, result.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.wantCode, result.Code)
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestCanTransition_SameStatusIsNoOp(t *testing.T) {
	result := CanTransition(Context{
		Current: domain.TicketStatusInProgress,
		Target:  domain.TicketStatusInProgress,
		Role:    domain.RoleTechnician,
	})
	assert.True(t, result.Allowed)
}

func TestCanTransition_PaymentGuard(t *testing.T) {
	ctx := Context{
		Current:     domain.TicketStatusRepaired,
		Target:      domain.TicketStatusCompleted,
		Role:        domain.RoleStaff,
		Outstanding: decimal.NewFromInt(40),
	}

	result := CanTransition(ctx)
	require.False(t, result.Allowed)
	assert.Equal(t, CodePaymentRequired, result.Code)
	assert.Contains(t, result.Reason, "40")

	ctx.Outstanding = decimal.Zero
	assert.True(t, CanTransition(ctx).Allowed)
}

func TestCanTransition_AdminOverride(t *testing.T) {
	ctx := Context{
		Current:     domain.TicketStatusRepaired,
		Target:      domain.TicketStatusCompleted,
		Outstanding: decimal.NewFromInt(25),
		Override:    true,
	}

	ctx.Role = domain.RoleAdmin
	assert.True(t, CanTransition(ctx).Allowed)

	// Override means nothing for non-admin roles.
	ctx.Role = domain.RoleStaff
	result := CanTransition(ctx)
	require.False(t, result.Allowed)
	assert.Equal(t, CodePaymentRequired, result.Code)
}

func TestAllowedTransitionsForRole(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusCancelled},
		AllowedTransitionsForRole(domain.TicketStatusReceived, domain.RoleAdmin))

	assert.ElementsMatch(t,
		[]domain.TicketStatus{domain.TicketStatusInProgress},
		AllowedTransitionsForRole(domain.TicketStatusReceived, domain.RoleTechnician))

	assert.Empty(t, AllowedTransitionsForRole(domain.TicketStatusCompleted, domain.RoleAdmin))
}

func TestHasPermission_AdminWildcard(t *testing.T) {
	for from, targets := range validTransitions {
		for _, to := range targets {
			assert.True(t, HasPermission(domain.RoleAdmin, from, to))
		}
	}
}
