package provider

import (
	"context"

	"github.com/goliatone/go-permissiongate/gate"
)

type contextKey struct{}

// WithContext makes reader available to code running under ctx.
func WithContext(ctx context.Context, reader gate.Reader) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if reader == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, reader)
}

// FromContext returns the reader stored in ctx. Without one, the returned
// reader publishes an empty record, which checks classify as Denied.
func FromContext(ctx context.Context) gate.Reader {
	if ctx != nil {
		if reader, ok := ctx.Value(contextKey{}).(gate.Reader); ok && reader != nil {
			return reader
		}
	}
	return gate.Static(gate.NewRecord())
}

// Permission reads the current record from the reader in ctx.
func Permission(ctx context.Context) gate.Record {
	return FromContext(ctx).Permission()
}
