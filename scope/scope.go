package scope

import (
	"context"
	"strings"

	"github.com/goliatone/go-permissiongate/gate"
)

type contextKey string

const (
	tenantIDKey contextKey = "permissiongate.tenant_id"
	orgIDKey    contextKey = "permissiongate.org_id"
	userIDKey   contextKey = "permissiongate.user_id"
)

// WithTenantID stores a tenant identifier in context. Blank values are ignored.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return withValue(ctx, tenantIDKey, tenantID)
}

// WithOrgID stores an org identifier in context. Blank values are ignored.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return withValue(ctx, orgIDKey, orgID)
}

// WithUserID stores a user identifier in context. Blank values are ignored.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, userIDKey, userID)
}

// WithScope stores every non-empty identifier of set in context.
func WithScope(ctx context.Context, set gate.ScopeSet) context.Context {
	ctx = WithTenantID(ctx, set.TenantID)
	ctx = WithOrgID(ctx, set.OrgID)
	return WithUserID(ctx, set.UserID)
}

// ClearTenantID removes the tenant identifier.
func ClearTenantID(ctx context.Context) context.Context {
	return clearValue(ctx, tenantIDKey)
}

// ClearOrgID removes the org identifier.
func ClearOrgID(ctx context.Context) context.Context {
	return clearValue(ctx, orgIDKey)
}

// ClearUserID removes the user identifier.
func ClearUserID(ctx context.Context) context.Context {
	return clearValue(ctx, userIDKey)
}

// TenantID extracts the tenant identifier from context.
func TenantID(ctx context.Context) string {
	return lookup(ctx, tenantIDKey)
}

// OrgID extracts the org identifier from context.
func OrgID(ctx context.Context) string {
	return lookup(ctx, orgIDKey)
}

// UserID extracts the user identifier from context.
func UserID(ctx context.Context) string {
	return lookup(ctx, userIDKey)
}

// FromContext builds a ScopeSet from context values.
func FromContext(ctx context.Context) gate.ScopeSet {
	if ctx == nil {
		return gate.ScopeSet{}
	}
	return gate.ScopeSet{
		TenantID: TenantID(ctx),
		OrgID:    OrgID(ctx),
		UserID:   UserID(ctx),
	}
}

// Resolver reads the ScopeSet carried by context.
func Resolver() gate.ScopeResolver {
	return gate.ScopeResolverFunc(func(ctx context.Context) (gate.ScopeSet, error) {
		return FromContext(ctx), nil
	})
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func clearValue(ctx context.Context, key contextKey) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, "")
}

func lookup(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	return toString(ctx.Value(key))
}

func toString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
