package gate

import "context"

// ResolveSource captures which branch produced the published record.
type ResolveSource string

const (
	ResolveSourceLoading   ResolveSource = "loading"
	ResolveSourceResponse  ResolveSource = "response"
	ResolveSourceRecovered ResolveSource = "recovered"
	ResolveSourceOverride  ResolveSource = "override"
)

// ResolveTrace captures provenance for a single resolution.
type ResolveTrace struct {
	Stage      Stage
	Source     ResolveSource
	Debug      bool
	Diagnostic bool
	ErrorKind  string
	Missing    []string
}

// ResolveEvent is emitted after each resolution for hooks.
type ResolveEvent struct {
	Record Record
	Error  error
	Trace  ResolveTrace
}

// ResolveHook receives resolution events.
type ResolveHook interface {
	OnResolve(ctx context.Context, event ResolveEvent)
}

// ResolveHookFunc wraps a function as a ResolveHook.
type ResolveHookFunc func(context.Context, ResolveEvent)

// OnResolve implements ResolveHook.
func (fn ResolveHookFunc) OnResolve(ctx context.Context, event ResolveEvent) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}
