package domain

// Role enumerates actor roles recognised by the core.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleStaff      Role = "STAFF"
	RoleTechnician Role = "TECHNICIAN"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleTechnician:
		return true
	}
	return false
}

// Actor is the authenticated caller, supplied per request by the
// authentication boundary. The core never issues sessions.
type Actor struct {
	ID   string
	Role Role
}
