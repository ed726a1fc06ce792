package urlkitadapter

import (
	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/urlbuilder"
	"github.com/goliatone/go-urlkit"
)

// ErrResolverRequired indicates the urlkit resolver is missing.
var ErrResolverRequired = ferrors.ErrResolverRequired

// Adapter wraps a urlkit.Resolver to satisfy urlbuilder.Builder.
type Adapter struct {
	Resolver urlkit.Resolver
}

// New builds a new Adapter for the provided resolver.
func New(resolver urlkit.Resolver) Adapter {
	return Adapter{Resolver: resolver}
}

// Resolve implements urlbuilder.Builder.
func (a Adapter) Resolve(groupPath, route string, params map[string]any, query map[string]string) (string, error) {
	meta := map[string]any{
		ferrors.MetaAdapter:   "urlkit",
		ferrors.MetaOperation: "resolve_endpoint",
		ferrors.MetaPath:      groupPath + "." + route,
	}
	if a.Resolver == nil {
		return "", ferrors.WrapSentinel(ferrors.ErrResolverRequired, "urlkitadapter: resolver is required", meta)
	}
	url, err := a.Resolver.Resolve(groupPath, route, params, query)
	if err != nil {
		return "", ferrors.WrapExternal(err, ferrors.TextCodeAdapterFailed, "urlkitadapter: resolve failed", meta)
	}
	return url, nil
}

// Endpoint returns the route a permission fetcher should call, resolved
// lazily through resolver on every fetch.
func Endpoint(resolver urlkit.Resolver, group, route string, query map[string]string) (urlbuilder.Builder, urlbuilder.Route) {
	return New(resolver), urlbuilder.Route{Group: group, Name: route, Query: query}
}

var _ urlbuilder.Builder = Adapter{}
