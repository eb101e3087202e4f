// Package policy resolves the operational policy snapshot from the
// settings table. Services fetch a snapshot once per request and pass
// it down; unknown or malformed values fall back to the defaults.
package policy

import (
	"context"
	"strconv"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/repository"
)

const (
	keyReturnWindowDays      = "return_window_days"
	keyRequireReturnApproval = "require_return_approval"
	keyAllowPartialRefunds   = "allow_partial_refunds"
	keyAutoRestockReturns    = "auto_restock_returns"
	keyAllowNegativeStock    = "allow_negative_stock"
)

// Provider resolves the current policy snapshot.
type Provider interface {
	Resolve(ctx context.Context) (domain.Policy, error)
}

type settingsProvider struct {
	q repository.Querier
}

// NewSettingsProvider reads policy values from the settings table.
func NewSettingsProvider(q repository.Querier) Provider {
	return &settingsProvider{q: q}
}

func (p *settingsProvider) Resolve(ctx context.Context) (domain.Policy, error) {
	rows, err := p.q.Query(ctx, `SELECT key, value FROM settings WHERE key = ANY($1)`, []string{
		keyReturnWindowDays,
		keyRequireReturnApproval,
		keyAllowPartialRefunds,
		keyAutoRestockReturns,
		keyAllowNegativeStock,
	})
	if err != nil {
		return domain.Policy{}, err
	}
	defer rows.Close()

	values := make(map[string]string, 5)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Policy{}, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.Policy{}, err
	}

	pol := domain.DefaultPolicy()
	if v, ok := values[keyReturnWindowDays]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			pol.ReturnWindowDays = n
		}
	}
	pol.RequireReturnApproval = boolOr(values, keyRequireReturnApproval, pol.RequireReturnApproval)
	pol.AllowPartialRefunds = boolOr(values, keyAllowPartialRefunds, pol.AllowPartialRefunds)
	pol.AutoRestockReturns = boolOr(values, keyAutoRestockReturns, pol.AutoRestockReturns)
	pol.AllowNegativeStock = boolOr(values, keyAllowNegativeStock, pol.AllowNegativeStock)
	return pol, nil
}

func boolOr(values map[string]string, key string, fallback bool) bool {
	v, ok := values[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Static returns a fixed policy, mainly for tests.
type Static struct {
	Policy domain.Policy
}

func (s Static) Resolve(context.Context) (domain.Policy, error) {
	return s.Policy, nil
}
