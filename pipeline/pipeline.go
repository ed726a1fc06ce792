package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/remote"
	"github.com/goliatone/go-permissiongate/schema"
	"github.com/goliatone/go-permissiongate/scope"
	"github.com/goliatone/go-permissiongate/transport"
)

// Pipeline fetches the raw permission body and decodes it against a schema.
// It is the only side-effecting step between a provider and its readers.
type Pipeline struct {
	fetcher   transport.Fetcher
	validator schema.Validator
	scopes    gate.ScopeResolver
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithValidator replaces the built-in schema.Codec.
func WithValidator(v schema.Validator) Option {
	return func(p *Pipeline) {
		if p == nil || v == nil {
			return
		}
		p.validator = v
	}
}

// WithScopeResolver sets how the fetch scope is derived from context.
func WithScopeResolver(r gate.ScopeResolver) Option {
	return func(p *Pipeline) {
		if p == nil || r == nil {
			return
		}
		p.scopes = r
	}
}

// New builds a Pipeline around fetcher.
func New(fetcher transport.Fetcher, opts ...Option) (*Pipeline, error) {
	if fetcher == nil {
		return nil, ferrors.WrapSentinel(ferrors.ErrFetcherRequired, "", map[string]any{
			ferrors.MetaOperation: "pipeline_new",
		})
	}
	p := &Pipeline{
		fetcher:   fetcher,
		validator: schema.Codec{},
		scopes:    scope.Resolver(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Scope resolves the scope the next Run will fetch for.
func (p *Pipeline) Scope(ctx context.Context) (gate.ScopeSet, error) {
	if p == nil || p.scopes == nil {
		return gate.ScopeSet{}, nil
	}
	set, err := p.scopes.Resolve(ctx)
	if err != nil {
		return gate.ScopeSet{}, ferrors.WrapExternal(err, ferrors.TextCodeScopeResolveFailed, "", map[string]any{
			ferrors.MetaOperation: "resolve_scope",
		})
	}
	return set, nil
}

// Run performs one fetch-decode cycle and returns a Failed or Succeeded
// outcome. Scope and transport failures become a TransportError; validator
// failures become a DecodeError merged over denied.
func (p *Pipeline) Run(ctx context.Context, s *schema.Schema, denied gate.Record) remote.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	set, err := p.Scope(ctx)
	if err != nil {
		return remote.Failed(failure.BuildTransportError(err))
	}
	return p.RunScope(ctx, set, s, denied)
}

// RunScope is Run for a scope the caller already resolved.
func (p *Pipeline) RunScope(ctx context.Context, set gate.ScopeSet, s *schema.Schema, denied gate.Record) remote.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if p == nil || p.fetcher == nil {
		return remote.Failed(failure.BuildTransportError(ferrors.WrapSentinel(ferrors.ErrFetcherRequired, "", nil)))
	}
	raw, err := p.fetcher.Fetch(ctx, set)
	if err != nil {
		return remote.Failed(failure.BuildTransportError(err))
	}
	return p.Decode(s, raw, denied)
}

// Decode validates raw against s.
func (p *Pipeline) Decode(s *schema.Schema, raw any, denied gate.Record) remote.Outcome {
	validator := schema.Validator(schema.Codec{})
	if p != nil && p.validator != nil {
		validator = p.validator
	}
	values, err := validator.Decode(s, raw)
	if err != nil {
		return remote.Failed(failure.BuildDecodeError(complaintsOf(err), raw, denied))
	}
	return remote.Succeeded(gate.FromBools(s.Keys(), values))
}

func complaintsOf(err error) []schema.Complaint {
	var verr *schema.ValidationError
	if errors.As(err, &verr) && len(verr.Complaints) > 0 {
		return verr.Complaints
	}
	return []schema.Complaint{{
		Path:    []string{""},
		Message: fmt.Sprint(err),
	}}
}
