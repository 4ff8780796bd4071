// Package identity carries the tenant/member/actor identity resolved by the
// platform gateway into request contexts. Authentication itself happens
// upstream; by the time a request reaches the billing core the gateway has
// already verified the session and stamped the identity headers.
package identity

import (
	"context"
	"net/http"

	"github.com/clubops/billing/internal/httpx"
)

type ctxKey string

const identityCtxKey = ctxKey("identity")

// Identity is the resolved caller scope for a request. TenantID and MemberID
// scope every record the engine touches; ActorID is who to attribute audit
// entries to (an admin acting on behalf of a member may differ from MemberID).
type Identity struct {
	TenantID string
	MemberID string
	ActorID  string
	Admin    bool
}

// Gateway headers. These are trusted only because the edge strips and
// re-stamps them after session verification.
const (
	HeaderTenant = "X-Tenant-ID"
	HeaderMember = "X-Member-ID"
	HeaderActor  = "X-Actor-ID"
	HeaderRole   = "X-Actor-Role"
)

// WithIdentity stores the identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// FromContext extracts the identity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

// Middleware resolves the gateway headers into an Identity. Requests without
// a tenant are rejected: nothing in the billing core is meaningful unscoped.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			TenantID: r.Header.Get(HeaderTenant),
			MemberID: r.Header.Get(HeaderMember),
			ActorID:  r.Header.Get(HeaderActor),
			Admin:    r.Header.Get(HeaderRole) == "admin",
		}
		if id.ActorID == "" {
			id.ActorID = id.MemberID
		}
		if id.TenantID == "" {
			httpx.JSONError(w, http.StatusUnauthorized, "missing_tenant", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin guards admin-only actions (mark-paid, void, dues runs).
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok || !id.Admin {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
