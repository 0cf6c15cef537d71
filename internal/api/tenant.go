package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
)

// TenantHeader carries the agency id on every /api request.
const TenantHeader = "X-Tenant-ID"

type tenantKey struct{}

// TenantMiddleware rejects requests without a valid tenant id and stores
// it in the request context.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TenantHeader)
		if raw == "" {
			httputil.BadRequest(w, TenantHeader+" header is required")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			httputil.BadRequest(w, "invalid "+TenantHeader)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), id)))
	})
}

// WithTenant returns a context carrying the tenant id.
func WithTenant(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// TenantFromContext returns the tenant id set by TenantMiddleware.
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantKey{}).(uuid.UUID)
	return id, ok
}

func tenantID(r *http.Request) uuid.UUID {
	id, _ := TenantFromContext(r.Context())
	return id
}
