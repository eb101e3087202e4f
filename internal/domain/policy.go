package domain

// Policy is the externally supplied, read-only configuration snapshot
// consulted by the core. Callers resolve it once per request and pass it
// into every operation that needs it; the core never reads settings
// storage directly.
type Policy struct {
	ReturnWindowDays      int
	RequireReturnApproval bool
	AllowPartialRefunds   bool
	AutoRestockReturns    bool
	AllowNegativeStock    bool
}

// DefaultPolicy mirrors the shipped settings defaults.
func DefaultPolicy() Policy {
	return Policy{
		ReturnWindowDays:      14,
		RequireReturnApproval: true,
		AllowPartialRefunds:   true,
		AutoRestockReturns:    true,
		AllowNegativeStock:    false,
	}
}
