package transport

import (
	"context"

	"github.com/goliatone/go-permissiongate/gate"
)

// Fetcher retrieves the raw, untrusted permission body for a scope. The
// returned value is handed to a schema.Validator unchanged.
type Fetcher interface {
	Fetch(ctx context.Context, scope gate.ScopeSet) (any, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, scope gate.ScopeSet) (any, error)

// Fetch implements Fetcher.
func (fn FetcherFunc) Fetch(ctx context.Context, scope gate.ScopeSet) (any, error) {
	return fn(ctx, scope)
}

// Static returns a Fetcher that always yields raw.
func Static(raw any) Fetcher {
	return FetcherFunc(func(context.Context, gate.ScopeSet) (any, error) {
		return raw, nil
	})
}

// Failing returns a Fetcher that always fails with err.
func Failing(err error) Fetcher {
	return FetcherFunc(func(context.Context, gate.ScopeSet) (any, error) {
		return nil, err
	})
}
