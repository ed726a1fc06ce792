package resolver

import (
	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/remote"
	"github.com/goliatone/go-permissiongate/schema"
	"github.com/goliatone/go-permissiongate/templates"
	"github.com/goliatone/go-permissiongate/view"
)

// Input holds everything a resolution depends on.
type Input struct {
	Outcome  remote.Outcome
	Denied   gate.Record
	Loading  gate.Record
	Debug    gate.DebugOptions
	Fallback view.View
}

// Resolution is the record to publish and the view to render in place of
// the provider children.
type Resolution struct {
	Record gate.Record
	View   view.View
	Trace  gate.ResolveTrace
}

// Option customizes Resolve.
type Option func(*config)

type config struct {
	diagnose func(failure.Error) view.View
	restrict *schema.Schema
}

// WithDiagnostic replaces the debug view constructor.
func WithDiagnostic(fn func(failure.Error) view.View) Option {
	return func(cfg *config) {
		if cfg == nil {
			return
		}
		cfg.diagnose = fn
	}
}

// WithStrictKeys drops recovered entries that s does not declare.
func WithStrictKeys(s *schema.Schema) Option {
	return func(cfg *config) {
		if cfg == nil {
			return
		}
		cfg.restrict = s
	}
}

// Resolve folds an outcome into a Resolution. It is pure and total.
//
//	NotStarted, Pending: Loading baseline, fallback view.
//	Failed:    recovered record (override in debug), diagnostic view in debug.
//	Succeeded: decoded record (override in debug), fallback view.
func Resolve(in Input, opts ...Option) Resolution {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.diagnose == nil {
		cfg.diagnose = templates.DiagnosticFunc()
	}
	fallback := view.Or(in.Fallback, nil)

	return remote.Fold(in.Outcome,
		func() Resolution {
			return loading(in, fallback, gate.StageNotStarted)
		},
		func() Resolution {
			return loading(in, fallback, gate.StagePending)
		},
		func(err failure.Error) Resolution {
			trace := gate.ResolveTrace{
				Stage:  gate.StageFailed,
				Source: gate.ResolveSourceRecovered,
				Debug:  in.Debug.Debug,
			}
			if err != nil {
				trace.ErrorKind = string(err.Kind())
				trace.Missing = failure.Match(err,
					func(e *failure.DecodeError) []string { return append([]string(nil), e.MissingKeys...) },
					func(*failure.TransportError) []string { return nil },
				)
			}
			rec := failure.Recover(err, in.Denied)
			if cfg.restrict != nil {
				rec = cfg.restrict.Restrict(rec)
			}
			if !in.Debug.Debug {
				return Resolution{Record: rec, View: fallback, Trace: trace}
			}
			if override, ok := in.Debug.Override(); ok {
				rec = override
				trace.Source = gate.ResolveSourceOverride
			}
			out := Resolution{Record: rec, View: fallback, Trace: trace}
			if err != nil {
				out.View = cfg.diagnose(err)
				out.Trace.Diagnostic = true
			}
			return out
		},
		func(rec gate.Record) Resolution {
			trace := gate.ResolveTrace{
				Stage:  gate.StageSucceeded,
				Source: gate.ResolveSourceResponse,
				Debug:  in.Debug.Debug,
			}
			if override, ok := in.Debug.Override(); ok {
				rec = override
				trace.Source = gate.ResolveSourceOverride
			}
			return Resolution{Record: rec, View: fallback, Trace: trace}
		},
	)
}

func loading(in Input, fallback view.View, stage gate.Stage) Resolution {
	return Resolution{
		Record: in.Loading,
		View:   fallback,
		Trace: gate.ResolveTrace{
			Stage:  stage,
			Source: gate.ResolveSourceLoading,
			Debug:  in.Debug.Debug,
		},
	}
}
