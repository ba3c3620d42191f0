package contextkeys

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for storing and retrieving a request ID.
	RequestIDKey contextKey = "request_id"

	// SubjectKey is the context key for the authenticated subject (username) from the token.
	SubjectKey contextKey = "subject"

	// RolesKey is the context key for the authenticated principal's role names ([]string).
	RolesKey contextKey = "roles"

	// PrincipalKey is the context key for storing the entire *domain.Principal.
	PrincipalKey contextKey = "principal"

	// AuthGateKey marks a request as already processed by the bearer auth gate.
	AuthGateKey contextKey = "auth_gate_evaluated"
)

// String makes contextKey satisfy fmt.Stringer to help with debugging/logging of keys themselves.
func (c contextKey) String() string {
	return string(c)
}
