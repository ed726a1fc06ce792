package goauthadapter

import (
	"context"
	"strings"

	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-permissiongate/gate"
)

// ActorExtractor extracts an auth.ActorContext from context.
type ActorExtractor func(context.Context) (*auth.ActorContext, bool)

// Option customizes the scope resolver behavior.
type Option func(*ScopeResolver)

// ScopeResolver derives the permission fetch scope from go-auth actor context.
type ScopeResolver struct {
	extractor ActorExtractor
}

// NewScopeResolver builds a resolver using go-auth's actor context extractor.
func NewScopeResolver(opts ...Option) *ScopeResolver {
	resolver := &ScopeResolver{
		extractor: auth.ActorFromContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(resolver)
		}
	}
	if resolver.extractor == nil {
		resolver.extractor = auth.ActorFromContext
	}
	return resolver
}

// WithActorExtractor overrides the actor context extractor.
func WithActorExtractor(extractor ActorExtractor) Option {
	return func(resolver *ScopeResolver) {
		if resolver == nil {
			return
		}
		resolver.extractor = extractor
	}
}

// Resolve implements gate.ScopeResolver.
func (r *ScopeResolver) Resolve(ctx context.Context) (gate.ScopeSet, error) {
	if r == nil || r.extractor == nil {
		return gate.ScopeSet{}, nil
	}
	actor, ok := r.extractor(ctx)
	if !ok || actor == nil {
		return gate.ScopeSet{}, nil
	}
	return ScopeFromActor(actor), nil
}

// ScopeFromActor builds a ScopeSet from an auth.ActorContext.
func ScopeFromActor(actor *auth.ActorContext) gate.ScopeSet {
	if actor == nil {
		return gate.ScopeSet{}
	}
	userID := actor.ActorID
	if userID == "" {
		userID = actor.Subject
	}
	return gate.ScopeSet{
		TenantID: actor.TenantID,
		OrgID:    actor.OrganizationID,
		UserID:   userID,
	}
}

// RolesFromActor returns the actor role as a role list for guard checks.
func RolesFromActor(actor *auth.ActorContext) []string {
	if actor == nil || strings.TrimSpace(actor.Role) == "" {
		return nil
	}
	return []string{strings.TrimSpace(actor.Role)}
}

// RolesFromContext extracts the actor roles from context.
func RolesFromContext(ctx context.Context) []string {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return nil
	}
	return RolesFromActor(actor)
}

var _ gate.ScopeResolver = (*ScopeResolver)(nil)
