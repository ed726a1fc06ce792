package routeradapter

import (
	"context"

	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/gate/guard"
	"github.com/goliatone/go-permissiongate/provider"
	"github.com/goliatone/go-permissiongate/scope"
	"github.com/goliatone/go-router"
)

// Context extracts the standard context from a router context.
func Context(ctx router.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx.Context()
}

// ScopeSet derives a ScopeSet from a router context.
func ScopeSet(ctx router.Context) gate.ScopeSet {
	return scope.FromContext(Context(ctx))
}

// Reader returns the permission reader bound to the request context.
func Reader(ctx router.Context) gate.Reader {
	return provider.FromContext(Context(ctx))
}

// Record returns the permission record bound to the request context. Without
// a provider the record is empty and every check is Denied.
func Record(ctx router.Context) gate.Record {
	return Reader(ctx).Permission()
}

// Check classifies the request against roles.
func Check(ctx router.Context, roles ...string) gate.State {
	return guard.CheckAccess(Record(ctx), roles)
}

// Require returns nil when the request holds one of roles, and a rich
// denied or loading error otherwise.
func Require(ctx router.Context, roles []string, opts ...guard.Option) error {
	std := Context(ctx)
	return guard.Require(std, provider.FromContext(std), roles, opts...)
}
