// Package boxcommon provides context management utilities shared across the
// box service: the tenant key type, request context accessors, and the
// per-tenant lock used to serialize tenant-scoped mutations.
package boxcommon

import (
	"context"
)

// TenantKey is the derived key that names a tenant's namespace and doubles
// as its bearer credential. The empty value means "no tenant".
type TenantKey string

func (k TenantKey) IsValid() bool {
	return k != ""
}

func (k TenantKey) String() string {
	return string(k)
}

type ctxKeyType string

const (
	ctxTenantKeyKey   ctxKeyType = "BoxTenantKey"
	ctxTestContextKey ctxKeyType = "BoxTestContext"
)

// SetTenantKeyInContext sets the tenant key in the provided context.
func SetTenantKeyInContext(ctx context.Context, key TenantKey) context.Context {
	return context.WithValue(ctx, ctxTenantKeyKey, key)
}

// TenantKeyFromContext retrieves the tenant key from the provided context.
func TenantKeyFromContext(ctx context.Context) TenantKey {
	if key, ok := ctx.Value(ctxTenantKeyKey).(TenantKey); ok {
		return key
	}
	return ""
}

// SetTestContext marks the context as belonging to a test request.
func SetTestContext(ctx context.Context, isTest bool) context.Context {
	return context.WithValue(ctx, ctxTestContextKey, isTest)
}

func IsTestContext(ctx context.Context) bool {
	if v, ok := ctx.Value(ctxTestContextKey).(bool); ok {
		return v
	}
	return false
}
