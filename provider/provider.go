package provider

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-permissiongate/activity"
	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/logger"
	"github.com/goliatone/go-permissiongate/pipeline"
	"github.com/goliatone/go-permissiongate/remote"
	"github.com/goliatone/go-permissiongate/resolver"
	"github.com/goliatone/go-permissiongate/schema"
	"github.com/goliatone/go-permissiongate/store"
	"github.com/goliatone/go-permissiongate/transport"
	"github.com/goliatone/go-permissiongate/view"
)

// Factory binds a schema and a fetcher. Every provider it creates shares
// the precomputed baselines but owns its own state.
type Factory struct {
	schema  *schema.Schema
	fetcher transport.Fetcher
	denied  gate.Record
	loading gate.Record

	debug         gate.DebugOptions
	validator     schema.Validator
	scopes        gate.ScopeResolver
	logger        logger.Logger
	resolveHooks  []gate.ResolveHook
	activityHooks activity.Hooks
	diagnose      func(failure.Error) view.View
	strict        bool
}

// NewFactory builds a Factory. An override record, when configured, must
// hold exactly the schema keys.
func NewFactory(s *schema.Schema, fetcher transport.Fetcher, opts ...Option) (*Factory, error) {
	if s == nil {
		return nil, ferrors.WrapSentinel(ferrors.ErrSchemaRequired, "", map[string]any{
			ferrors.MetaOperation: "provider_factory",
		})
	}
	if fetcher == nil {
		return nil, ferrors.WrapSentinel(ferrors.ErrFetcherRequired, "", map[string]any{
			ferrors.MetaOperation: "provider_factory",
		})
	}
	f := &Factory{
		schema:  s,
		fetcher: fetcher,
		denied:  s.MapTo(gate.StateDenied),
		loading: s.MapTo(gate.StateLoading),
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if err := checkOverride(s, f.debug); err != nil {
		return nil, err
	}
	return f, nil
}

// Schema returns the bound schema.
func (f *Factory) Schema() *schema.Schema {
	return f.schema
}

// Baselines returns the denied and loading records of the bound schema.
func (f *Factory) Baselines() (denied, loading gate.Record) {
	return f.denied, f.loading
}

// Provide creates a provider rendering children. The provider publishes the
// loading baseline until Mount or Load runs.
func (f *Factory) Provide(children view.View) *Provider {
	pipe, _ := pipeline.New(f.fetcher,
		pipeline.WithValidator(f.validator),
		pipeline.WithScopeResolver(f.scopes),
	)
	p := &Provider{
		factory:  f,
		pipeline: pipe,
		children: children,
		schema:   f.schema,
		denied:   f.denied,
		loading:  f.loading,
		outcome:  remote.NotStarted(),
	}
	p.state = store.New(p.resolveLocked(remote.NotStarted()))
	return p
}

// Provider owns the outcome of one fetch-decode cycle and publishes the
// resolved record to its readers.
//
// Subscribers and resolve hooks run synchronously while the provider
// publishes. They may read the provider and may Close it, but must not call
// Mount, Load or SetSchema from the callback.
type Provider struct {
	factory  *Factory
	pipeline *pipeline.Pipeline
	children view.View

	mu      sync.Mutex
	schema  *schema.Schema
	denied  gate.Record
	loading gate.Record
	outcome remote.Outcome
	closed  bool

	// pub orders publications. Lock order is pub then mu.
	pub      sync.Mutex
	seq      atomic.Uint64
	inflight sync.WaitGroup
	state    *store.Store[resolver.Resolution]
}

// cycle is one fetch-decode run bound to the schema current at its start.
type cycle struct {
	seq    uint64
	schema *schema.Schema
	denied gate.Record
}

// publication is a resolution staged under mu and delivered after it.
type publication struct {
	seq    uint64
	schema string
	err    error
	res    resolver.Resolution
}

// Permission implements gate.Reader.
func (p *Provider) Permission() gate.Record {
	if p == nil {
		return gate.NewRecord()
	}
	return p.state.Get().Record
}

// Outcome returns the current pipeline outcome.
func (p *Provider) Outcome() remote.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

// Schema returns the schema currently in effect.
func (p *Provider) Schema() *schema.Schema {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schema
}

// Subscribe registers fn for every published record.
func (p *Provider) Subscribe(fn func(gate.Record)) func() {
	if fn == nil {
		return func() {}
	}
	return p.state.Subscribe(func(res resolver.Resolution) {
		fn(res.Record)
	})
}

// Render writes the current view: the children, or the diagnostic view
// when debug mode resolved a failure.
func (p *Provider) Render(w io.Writer) error {
	v := p.state.Get().View
	if v == nil {
		return nil
	}
	return v.Render(w)
}

// Mount starts a fetch-decode cycle in the background. The outcome moves to
// Pending immediately.
func (p *Provider) Mount(ctx context.Context) error {
	c, pending, err := p.begin("mount", nil)
	if err != nil {
		return err
	}
	p.deliver(ctx, pending)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.run(ctx, c)
	}()
	return nil
}

// Load runs a fetch-decode cycle and returns the record published once it
// completes. A newer cycle started meanwhile wins.
func (p *Provider) Load(ctx context.Context) (gate.Record, error) {
	c, pending, err := p.begin("load", nil)
	if err != nil {
		return gate.Record{}, err
	}
	p.deliver(ctx, pending)
	p.run(ctx, c)
	return p.Permission(), nil
}

// SetSchema swaps the schema. A different schema pointer rebuilds the
// baselines and starts a new cycle; the same pointer is a no-op.
func (p *Provider) SetSchema(ctx context.Context, s *schema.Schema) error {
	if s == nil {
		return ferrors.WrapSentinel(ferrors.ErrSchemaRequired, "", map[string]any{
			ferrors.MetaOperation: "set_schema",
		})
	}
	if err := checkOverride(s, p.factory.debug); err != nil {
		return err
	}
	c, pending, err := p.begin("set_schema", s)
	if err != nil || c.seq == 0 {
		return err
	}
	p.deliver(ctx, pending)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.run(ctx, c)
	}()
	return nil
}

// Wait blocks until every background cycle has finished.
func (p *Provider) Wait() {
	p.inflight.Wait()
}

// Close stops publishing. Cycles still in flight are discarded when they
// complete.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.seq.Add(1)
	p.state.Close()
}

// begin starts a cycle. With a non-nil schema it first swaps the schema and
// baselines; the swap, the sequence bump and the Pending outcome happen in
// one critical section so no older cycle can publish against the new
// baselines. A zero cycle means s is already current.
func (p *Provider) begin(op string, s *schema.Schema) (cycle, publication, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return cycle{}, publication{}, closedError(op)
	}
	if s != nil {
		if p.schema == s {
			return cycle{}, publication{}, nil
		}
		p.schema = s
		p.denied = s.MapTo(gate.StateDenied)
		p.loading = s.MapTo(gate.StateLoading)
	}
	c := cycle{seq: p.seq.Add(1), schema: p.schema, denied: p.denied}
	pending, _ := p.stageLocked(c.seq, remote.Pending())
	return c, pending, nil
}

func (p *Provider) run(ctx context.Context, c cycle) {
	if ctx == nil {
		ctx = context.Background()
	}
	event := activity.UpdateEvent{
		FetchID:  uuid.NewString(),
		Sequence: c.seq,
		Schema:   c.schema.Name(),
		Action:   activity.ActionFetchStarted,
		Stage:    gate.StagePending,
	}
	set, scopeErr := p.pipeline.Scope(ctx)
	event.Scope = set
	p.factory.activityHooks.OnUpdate(ctx, event)

	started := time.Now()
	var out remote.Outcome
	if scopeErr != nil {
		out = remote.Failed(failure.BuildTransportError(scopeErr))
	} else {
		out = p.pipeline.RunScope(ctx, set, c.schema, c.denied)
	}
	event.Duration = time.Since(started)
	event.Stage = out.Stage()
	if err := out.Err(); err != nil {
		event.ErrorKind = string(err.Kind())
	}

	p.mu.Lock()
	staged, ok := p.stageLocked(c.seq, out)
	p.mu.Unlock()
	if !ok || !p.deliver(ctx, staged) {
		event.Action = activity.ActionFetchDiscarded
		p.factory.activityHooks.OnUpdate(ctx, event)
		p.factory.logger.Debug("permissiongate.fetch", "fetch_id", event.FetchID, "action", event.Action, "sequence", c.seq)
		return
	}

	event.Action = activity.ActionFetchSucceeded
	if out.Stage() == gate.StageFailed {
		event.Action = activity.ActionFetchFailed
	}
	p.factory.activityHooks.OnUpdate(ctx, event)
}

// stageLocked records out as the current outcome of cycle seq and resolves
// it against the current baselines. It reports false when seq is stale or
// the provider is closed.
func (p *Provider) stageLocked(seq uint64, out remote.Outcome) (publication, bool) {
	if p.closed || seq != p.seq.Load() {
		return publication{}, false
	}
	p.outcome = out
	staged := publication{
		seq:    seq,
		schema: p.schema.Name(),
		res:    p.resolveLocked(out),
	}
	if failed := out.Err(); failed != nil {
		staged.err = failed
	}
	return staged, true
}

// deliver publishes a staged resolution to subscribers, the logger and the
// resolve hooks. A publication overtaken by a newer cycle is dropped.
func (p *Provider) deliver(ctx context.Context, staged publication) bool {
	p.pub.Lock()
	defer p.pub.Unlock()
	if staged.seq == 0 || staged.seq != p.seq.Load() {
		return false
	}
	if !p.state.Set(staged.res) {
		return false
	}
	res := staged.res
	p.factory.logger.Debug("permissiongate.resolve",
		"schema", staged.schema,
		"stage", res.Trace.Stage,
		"source", res.Trace.Source,
		"record", res.Record.String(),
	)
	for _, hook := range p.factory.resolveHooks {
		hook.OnResolve(ctx, gate.ResolveEvent{Record: res.Record, Error: staged.err, Trace: res.Trace})
	}
	return true
}

func (p *Provider) resolveLocked(out remote.Outcome) resolver.Resolution {
	f := p.factory
	var opts []resolver.Option
	if f.diagnose != nil {
		opts = append(opts, resolver.WithDiagnostic(f.diagnose))
	}
	if f.strict {
		opts = append(opts, resolver.WithStrictKeys(p.schema))
	}
	return resolver.Resolve(resolver.Input{
		Outcome:  out,
		Denied:   p.denied,
		Loading:  p.loading,
		Debug:    f.debug,
		Fallback: p.children,
	}, opts...)
}

func checkOverride(s *schema.Schema, debug gate.DebugOptions) error {
	override, ok := debug.Override()
	if !ok || s.Conforms(override) {
		return nil
	}
	return ferrors.WrapSentinel(ferrors.ErrOverrideInvalid, "", map[string]any{
		ferrors.MetaPermissionKeys: override.Keys(),
		ferrors.MetaOperation:      "check_override",
	})
}

func closedError(op string) error {
	return ferrors.WrapSentinel(ferrors.ErrProviderClosed, "", map[string]any{
		ferrors.MetaOperation: op,
	})
}

var _ gate.Reader = (*Provider)(nil)
var _ view.View = (*Provider)(nil)
