// Package authz provides request identity extraction and role checks for
// the material registry server. Authentication itself is delegated to a
// fronting proxy; the server trusts the identity headers it forwards.
package authz

// Role is the closed set of roles the registry understands.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
	RoleClient   Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReviewer, RoleClient:
		return true
	}
	return false
}
