package activity

import (
	"context"
	"time"

	"github.com/goliatone/go-permissiongate/gate"
)

// Action describes a step of the fetch lifecycle.
type Action string

const (
	ActionFetchStarted   Action = "fetch_started"
	ActionFetchSucceeded Action = "fetch_succeeded"
	ActionFetchFailed    Action = "fetch_failed"
	ActionFetchDiscarded Action = "fetch_discarded"
)

// UpdateEvent captures one fetch lifecycle step.
type UpdateEvent struct {
	FetchID   string
	Sequence  uint64
	Schema    string
	Scope     gate.ScopeSet
	Action    Action
	Stage     gate.Stage
	ErrorKind string
	Duration  time.Duration
}

// Hook receives update events.
type Hook interface {
	OnUpdate(ctx context.Context, event UpdateEvent)
}

// HookFunc wraps a function as a Hook.
type HookFunc func(context.Context, UpdateEvent)

// OnUpdate implements Hook.
func (fn HookFunc) OnUpdate(ctx context.Context, event UpdateEvent) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}

// NoopHook ignores updates.
type NoopHook struct{}

// OnUpdate implements Hook.
func (NoopHook) OnUpdate(context.Context, UpdateEvent) {}

// Hooks fans an event out to every non-nil hook.
type Hooks []Hook

// OnUpdate implements Hook.
func (h Hooks) OnUpdate(ctx context.Context, event UpdateEvent) {
	for _, hook := range h {
		if hook != nil {
			hook.OnUpdate(ctx, event)
		}
	}
}
