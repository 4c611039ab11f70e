package shared

import "context"

// Role names recognised by the sync endpoints.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Identity describes the authenticated caller of a sync request.
type Identity struct {
	UserID string
	Role   string
}

// CanViewSupplierData reports whether supplier entities and purchase costs
// may be returned to this caller.
func (id Identity) CanViewSupplierData() bool {
	return id.Role == RoleAdmin || id.Role == RoleManager
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
