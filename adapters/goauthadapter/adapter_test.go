package goauthadapter

import (
	"context"
	"testing"

	"github.com/goliatone/go-auth"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-permissiongate/gate"
)

func TestScopeResolverUsesActor(t *testing.T) {
	actor := &auth.ActorContext{
		Subject:        "user-1",
		TenantID:       "acme",
		OrganizationID: "eng",
		Role:           "admin",
	}
	resolver := NewScopeResolver(WithActorExtractor(func(context.Context) (*auth.ActorContext, bool) {
		return actor, true
	}))

	set, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, gate.ScopeSet{TenantID: "acme", OrgID: "eng", UserID: "user-1"}, set)
	require.Equal(t, []string{"admin"}, RolesFromActor(actor))
}

func TestScopeResolverWithoutActor(t *testing.T) {
	resolver := NewScopeResolver(WithActorExtractor(func(context.Context) (*auth.ActorContext, bool) {
		return nil, false
	}))
	set, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, set.Empty())
	require.Nil(t, RolesFromActor(nil))
}
