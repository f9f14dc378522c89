package tenant

import (
	"context"
	"strings"
)

type contextKey string

const tenantContextKey contextKey = "tenant.id"

// WithTenant stores the tenant identifier inside the context.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantContextKey, tenantID)
}

// With is shorthand for WithTenant.
func With(ctx context.Context, id string) context.Context {
	return WithTenant(ctx, id)
}

// FromContext extracts the tenant identifier from the context if available.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	tenantID, ok := ctx.Value(tenantContextKey).(string)
	if !ok {
		return "", false
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", false
	}
	return tenantID, true
}

// From is shorthand for FromContext.
func From(ctx context.Context) (string, bool) {
	return FromContext(ctx)
}

// PrefixKey namespaces a cache, lock or queue key by tenant.
func PrefixKey(tenantID, key string) string {
	if tenantID == "" {
		return key
	}
	return tenantID + ":" + key
}

// Key namespaces key by the tenant carried in ctx.
func Key(ctx context.Context, key string) string {
	id, _ := FromContext(ctx)
	return PrefixKey(id, key)
}
