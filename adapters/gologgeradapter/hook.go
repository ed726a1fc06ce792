package gologgeradapter

import (
	"context"
	"strings"

	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-permissiongate/activity"
	"github.com/goliatone/go-permissiongate/gate"
)

const (
	DefaultResolveMessage = "permissiongate.resolve"
	DefaultFetchMessage   = "permissiongate.fetch"
)

// Hook logs resolve and fetch events using go-logger.
type Hook struct {
	logger         glog.Logger
	resolveLevel   string
	updateLevel    string
	failureLevel   string
	resolveMessage string
	updateMessage  string
}

// Option customizes the logger hook.
type Option func(*Hook)

// New builds a logging hook for resolve and fetch events.
func New(logger glog.Logger, opts ...Option) *Hook {
	hook := &Hook{
		logger:         logger,
		resolveLevel:   "debug",
		updateLevel:    "debug",
		failureLevel:   "warn",
		resolveMessage: DefaultResolveMessage,
		updateMessage:  DefaultFetchMessage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hook)
		}
	}
	return hook
}

// WithResolveLevel sets the log level for resolve events.
func WithResolveLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.resolveLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithUpdateLevel sets the log level for fetch lifecycle events.
func WithUpdateLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.updateLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithFailureLevel sets the log level for failed resolutions and fetches.
func WithFailureLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.failureLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithResolveMessage overrides the resolve log message.
func WithResolveMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.resolveMessage = message
	}
}

// WithUpdateMessage overrides the fetch log message.
func WithUpdateMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.updateMessage = message
	}
}

// OnResolve implements gate.ResolveHook.
func (h *Hook) OnResolve(ctx context.Context, event gate.ResolveEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"permission_stage":      event.Trace.Stage,
		"permission_source":     event.Trace.Source,
		"permission_debug":      event.Trace.Debug,
		"permission_diagnostic": event.Trace.Diagnostic,
		"permission_record":     event.Record.String(),
	}
	level := h.resolveLevel
	if event.Error != nil {
		fields["permission_error"] = event.Error.Error()
		fields["permission_error_kind"] = event.Trace.ErrorKind
		level = h.failureLevel
	}
	if len(event.Trace.Missing) > 0 {
		fields["permission_missing"] = strings.Join(event.Trace.Missing, ",")
	}
	h.log(ctx, level, h.resolveMessage, fields)
}

// OnUpdate implements activity.Hook.
func (h *Hook) OnUpdate(ctx context.Context, event activity.UpdateEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"fetch_id":       event.FetchID,
		"fetch_sequence": event.Sequence,
		"fetch_action":   event.Action,
		"fetch_stage":    event.Stage,
		"schema":         event.Schema,
	}
	if event.Duration > 0 {
		fields["fetch_duration_ms"] = event.Duration.Milliseconds()
	}
	level := h.updateLevel
	if event.ErrorKind != "" {
		fields["fetch_error_kind"] = event.ErrorKind
	}
	if event.Action == activity.ActionFetchFailed {
		level = h.failureLevel
	}
	for key, value := range scopeFields(event.Scope) {
		fields[key] = value
	}
	h.log(ctx, level, h.updateMessage, fields)
}

func (h *Hook) log(ctx context.Context, level string, message string, fields map[string]any) {
	logger := h.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(glog.FieldsLogger); ok && len(fields) > 0 {
		logger = fieldsLogger.WithFields(fields)
	}
	switch level {
	case "trace":
		logger.Trace(message)
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error":
		logger.Error(message)
	case "fatal":
		// Never exit from a hook; fatal maps to error.
		logger.Error(message)
	default:
		logger.Info(message)
	}
}

func scopeFields(scopeSet gate.ScopeSet) map[string]any {
	fields := map[string]any{}
	if scopeSet.TenantID != "" {
		fields["tenant_id"] = scopeSet.TenantID
	}
	if scopeSet.OrgID != "" {
		fields["org_id"] = scopeSet.OrgID
	}
	if scopeSet.UserID != "" {
		fields["user_id"] = scopeSet.UserID
	}
	return fields
}

var _ gate.ResolveHook = (*Hook)(nil)
var _ activity.Hook = (*Hook)(nil)
