package urlbuilder

import "strings"

// Builder resolves group/route pairs into URLs.
type Builder interface {
	Resolve(groupPath, route string, params map[string]any, query map[string]string) (string, error)
}

// Route names an endpoint resolved through a Builder.
type Route struct {
	Group  string
	Name   string
	Params map[string]any
	Query  map[string]string
}

// Static is a Builder that always returns the same URL.
type Static string

// Resolve implements Builder.
func (s Static) Resolve(string, string, map[string]any, map[string]string) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// ResolveRoute resolves route through b.
func ResolveRoute(b Builder, route Route) (string, error) {
	if b == nil {
		return "", nil
	}
	return b.Resolve(route.Group, route.Name, route.Params, route.Query)
}

var _ Builder = Static("")
