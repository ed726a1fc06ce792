package provider

import (
	"github.com/goliatone/go-permissiongate/activity"
	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/logger"
	"github.com/goliatone/go-permissiongate/schema"
	"github.com/goliatone/go-permissiongate/view"
)

// Option customizes a Factory.
type Option func(*Factory)

// WithDebug sets diagnostic rendering and the optional override record.
func WithDebug(debug gate.DebugOptions) Option {
	return func(f *Factory) {
		if f == nil {
			return
		}
		f.debug = debug
	}
}

// WithValidator replaces the built-in schema.Codec.
func WithValidator(v schema.Validator) Option {
	return func(f *Factory) {
		if f == nil || v == nil {
			return
		}
		f.validator = v
	}
}

// WithScopeResolver sets how the fetch scope is derived from context.
func WithScopeResolver(r gate.ScopeResolver) Option {
	return func(f *Factory) {
		if f == nil || r == nil {
			return
		}
		f.scopes = r
	}
}

// WithLogger sets the provider logger.
func WithLogger(lgr logger.Logger) Option {
	return func(f *Factory) {
		if f == nil || lgr == nil {
			return
		}
		f.logger = lgr
	}
}

// WithResolveHook registers a hook invoked after every published resolution.
func WithResolveHook(hook gate.ResolveHook) Option {
	return func(f *Factory) {
		if f == nil || hook == nil {
			return
		}
		f.resolveHooks = append(f.resolveHooks, hook)
	}
}

// WithActivityHook registers a hook for fetch lifecycle events.
func WithActivityHook(hook activity.Hook) Option {
	return func(f *Factory) {
		if f == nil || hook == nil {
			return
		}
		f.activityHooks = append(f.activityHooks, hook)
	}
}

// WithDiagnostic replaces the debug view constructor.
func WithDiagnostic(fn func(failure.Error) view.View) Option {
	return func(f *Factory) {
		if f == nil || fn == nil {
			return
		}
		f.diagnose = fn
	}
}

// WithStrictKeys drops recovered entries the schema does not declare.
func WithStrictKeys(enabled bool) Option {
	return func(f *Factory) {
		if f == nil {
			return
		}
		f.strict = enabled
	}
}
