// Package lifecycle validates ticket status transitions. Transition
// legality and role permissions are encoded as data tables; business
// guards (payment, terminal states, the return-only RETURNED status)
// are layered on top.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fixhub/repairshop/internal/domain"
)

// RejectionCode classifies why a transition was refused.
type RejectionCode string

const (
	CodeInvalidTransition       RejectionCode = "INVALID_TRANSITION"
	CodeInsufficientPermissions RejectionCode = "INSUFFICIENT_PERMISSIONS"
	CodePaymentRequired         RejectionCode = "PAYMENT_REQUIRED"
	CodeTerminalState           RejectionCode = "TERMINAL_STATE"
	CodeReturnFlowRequired      RejectionCode = "RETURN_FLOW_REQUIRED"
)

// Context carries everything CanTransition needs to decide.
type Context struct {
	Current domain.TicketStatus
	Target  domain.TicketStatus
	Role    domain.Role
	// Outstanding is the unpaid balance used by the completion guard.
	Outstanding decimal.Decimal
	// Override lets an admin complete a ticket despite an outstanding
	// balance. Ignored for every other role.
	Override bool
}

// Result is the structured verdict. Rejections carry a human-readable
// reason and a machine-checkable code; they are never errors.
type Result struct {
	Allowed bool
	Reason  string
	Code    RejectionCode
}

// RETURNED is absent everywhere as a target: it is reachable only
// through the return approval flow.
var validTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusReceived:        {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress:      {domain.TicketStatusWaitingForParts, domain.TicketStatusRepaired, domain.TicketStatusCancelled},
	domain.TicketStatusWaitingForParts: {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusRepaired:        {domain.TicketStatusCompleted},
	domain.TicketStatusCompleted:       {},
	domain.TicketStatusReturned:        {},
	domain.TicketStatusCancelled:       {},
}

const allTransitions = "*"

func transitionKey(current, target domain.TicketStatus) string {
	return string(current) + ">" + string(target)
}

var rolePermissions = map[domain.Role][]string{
	domain.RoleAdmin: {allTransitions},
	domain.RoleStaff: {
		transitionKey(domain.TicketStatusReceived, domain.TicketStatusInProgress),
		transitionKey(domain.TicketStatusReceived, domain.TicketStatusCancelled),
		transitionKey(domain.TicketStatusInProgress, domain.TicketStatusWaitingForParts),
		transitionKey(domain.TicketStatusInProgress, domain.TicketStatusRepaired),
		transitionKey(domain.TicketStatusInProgress, domain.TicketStatusCancelled),
		transitionKey(domain.TicketStatusWaitingForParts, domain.TicketStatusInProgress),
		transitionKey(domain.TicketStatusWaitingForParts, domain.TicketStatusCancelled),
		transitionKey(domain.TicketStatusRepaired, domain.TicketStatusCompleted),
	},
	domain.RoleTechnician: {
		transitionKey(domain.TicketStatusReceived, domain.TicketStatusInProgress),
		transitionKey(domain.TicketStatusInProgress, domain.TicketStatusWaitingForParts),
		transitionKey(domain.TicketStatusInProgress, domain.TicketStatusRepaired),
		transitionKey(domain.TicketStatusWaitingForParts, domain.TicketStatusInProgress),
	},
}

// IsValidTransition reports table legality only, ignoring roles and guards.
func IsValidTransition(current, target domain.TicketStatus) bool {
	for _, candidate := range validTransitions[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// HasPermission reports whether the role may invoke the transition.
func HasPermission(role domain.Role, current, target domain.TicketStatus) bool {
	perms := rolePermissions[role]
	for _, p := range perms {
		if p == allTransitions || p == transitionKey(current, target) {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal targets from a status.
func AllowedTransitions(current domain.TicketStatus) []domain.TicketStatus {
	return validTransitions[current]
}

// AllowedTransitionsForRole filters legal targets by role permission.
func AllowedTransitionsForRole(current domain.TicketStatus, role domain.Role) []domain.TicketStatus {
	var allowed []domain.TicketStatus
	for _, target := range validTransitions[current] {
		if HasPermission(role, current, target) {
			allowed = append(allowed, target)
		}
	}
	return allowed
}

// CanTransition is the transition guard. Checks run in order: no-op,
// terminal source, return-flow target, table legality, role permission,
// payment guard on entering COMPLETED.
func CanTransition(ctx Context) Result {
	if ctx.Current == ctx.Target {
		return Result{Allowed: true}
	}

	if ctx.Current.Terminal() {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot transition from terminal state %s", ctx.Current),
			Code:    CodeTerminalState,
		}
	}

	if ctx.Target == domain.TicketStatusReturned {
		return Result{
			Allowed: false,
			Reason:  "RETURNED can only be set via the return approval flow",
			Code:    CodeReturnFlowRequired,
		}
	}

	if !IsValidTransition(ctx.Current, ctx.Target) {
		return Result{
			Allowed: false,
			Reason: fmt.Sprintf("invalid transition from %s to %s, allowed: %s",
				ctx.Current, ctx.Target, joinStatuses(AllowedTransitions(ctx.Current))),
			Code: CodeInvalidTransition,
		}
	}

	if !HasPermission(ctx.Role, ctx.Current, ctx.Target) {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("role %s may not transition from %s to %s", ctx.Role, ctx.Current, ctx.Target),
			Code:    CodeInsufficientPermissions,
		}
	}

	if ctx.Target == domain.TicketStatusCompleted && ctx.Outstanding.IsPositive() {
		if !(ctx.Override && ctx.Role == domain.RoleAdmin) {
			return Result{
				Allowed: false,
				Reason:  fmt.Sprintf("payment outstanding: cannot complete ticket with balance of %s", ctx.Outstanding),
				Code:    CodePaymentRequired,
			}
		}
	}

	return Result{Allowed: true}
}

func joinStatuses(statuses []domain.TicketStatus) string {
	if len(statuses) == 0 {
		return "none"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
