package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "pgfeedback context key " + string(c)
}

// UserIDKey is the key for the acting user's id in context.Context
const UserIDKey = contextKey("userID")

// UserNameKey is the key for the acting user's display name in context.Context
const UserNameKey = contextKey("userName")

// UserRoleKey is the key for the acting user's role in context.Context
const UserRoleKey = contextKey("userRole")

// RequestIDKey is the key for the request id in context.Context
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the emitting component in context.Context
const ComponentKey = contextKey("component")
