package model

// Role is the authorization level carried by an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the opaque value produced by the external auth collaborator.
// The engine only reads it; absence of authentication is the zero value.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	UID           string `json:"uid"`
	DisplayName   string `json:"displayName"`
	Role          Role   `json:"role"`
}

// Anonymous is the identity of an unauthenticated visitor.
func Anonymous() Identity {
	return Identity{}
}

// IsAdmin reports whether the identity is an authenticated admin.
func (i Identity) IsAdmin() bool {
	return i.Authenticated && i.Role == RoleAdmin
}
