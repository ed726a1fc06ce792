package templates

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/gate/guard"
	"github.com/goliatone/go-permissiongate/logger"
)

const TemplateSnapshotKey = "permission_snapshot"

// HelperConfig configures template helpers.
type HelperConfig struct {
	SnapshotKey            string
	EnableStructuredErrors bool
	EnableErrorLogging     bool
	Logger                 logger.Logger
}

// HelperOption configures template helpers.
type HelperOption func(*HelperConfig)

// DefaultHelperConfig returns the default helper configuration.
func DefaultHelperConfig() HelperConfig {
	return HelperConfig{
		SnapshotKey: TemplateSnapshotKey,
	}
}

// WithSnapshotKey overrides the template snapshot key name.
func WithSnapshotKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.SnapshotKey = strings.TrimSpace(key)
	}
}

// WithStructuredErrors toggles structured error output for value helpers.
func WithStructuredErrors(enabled bool) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.EnableStructuredErrors = enabled
	}
}

// WithErrorLogging toggles error logging for helper failures.
func WithErrorLogging(enabled bool) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.EnableErrorLogging = enabled
	}
}

// WithLogger injects a logger for helper error logging.
func WithLogger(lgr logger.Logger) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.Logger = lgr
	}
}

// TemplateHelpers returns pongo2 functions that read the record published
// by reader. A snapshot stored in the template context takes precedence.
func TemplateHelpers(reader gate.Reader, opts ...HelperOption) map[string]any {
	cfg := DefaultHelperConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.EnableErrorLogging && cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	helpers := &helperSet{reader: reader, cfg: cfg}

	return map[string]any{
		"permission":         helpers.permission,
		"permission_check":   helpers.permissionCheck,
		"permission_granted": helpers.permissionGranted,
		"permission_all":     helpers.permissionAll,
		"permission_loading": helpers.permissionLoading,
		"permission_if":      helpers.permissionIf,
		"permission_class":   helpers.permissionClass,
	}
}

type helperSet struct {
	reader gate.Reader
	cfg    HelperConfig
}

func (h *helperSet) permission(execCtx *pongo2.ExecutionContext, key any) string {
	parsed, ok := parseKey(key)
	if !ok {
		return string(gate.StateDenied)
	}
	rec := h.record(execCtx)
	if first, ok := rec.First(); ok && first.State == gate.StateLoading {
		return string(gate.StateLoading)
	}
	state, ok := rec.Get(parsed)
	if !ok {
		return string(gate.StateDenied)
	}
	return string(state)
}

func (h *helperSet) permissionCheck(execCtx *pongo2.ExecutionContext, roles ...any) string {
	return string(guard.CheckAccess(h.record(execCtx), parseKeys(roles...)))
}

func (h *helperSet) permissionGranted(execCtx *pongo2.ExecutionContext, roles ...any) bool {
	return guard.CheckAccess(h.record(execCtx), parseKeys(roles...)) == gate.StateGranted
}

func (h *helperSet) permissionAll(execCtx *pongo2.ExecutionContext, roles ...any) bool {
	parsed := parseKeys(roles...)
	if len(parsed) == 0 {
		return false
	}
	rec := h.record(execCtx)
	for _, role := range parsed {
		if guard.CheckAccess(rec, []string{role}) != gate.StateGranted {
			return false
		}
	}
	return true
}

func (h *helperSet) permissionLoading(execCtx *pongo2.ExecutionContext) bool {
	return guard.CheckAccess(h.record(execCtx), nil) == gate.StateLoading
}

func (h *helperSet) permissionIf(execCtx *pongo2.ExecutionContext, role any, whenGranted any, otherwise ...any) any {
	return h.choose("permission_if", execCtx, role, whenGranted, otherwise...)
}

func (h *helperSet) permissionClass(execCtx *pongo2.ExecutionContext, role any, on any, off ...any) any {
	return h.choose("permission_class", execCtx, role, on, off...)
}

func (h *helperSet) choose(helper string, execCtx *pongo2.ExecutionContext, role any, on any, off ...any) any {
	var fallback any = ""
	if len(off) > 0 {
		fallback = off[0]
	}
	parsed := parseKeys(role)
	if len(parsed) == 0 {
		return h.errorOrFallback(helper, ferrors.WrapSentinel(ferrors.ErrInvalidKey, "permission key is required", map[string]any{
			ferrors.MetaPermissionKey: fmt.Sprint(unwrapValue(role)),
		}), fallback)
	}
	if guard.CheckAccess(h.record(execCtx), parsed) == gate.StateGranted {
		return on
	}
	return fallback
}

func (h *helperSet) record(execCtx *pongo2.ExecutionContext) gate.Record {
	if snapshot := h.snapshot(execCtx); snapshot != nil {
		if rec, ok := snapshotRecord(snapshot); ok {
			return rec
		}
	}
	if h.reader == nil {
		return gate.NewRecord()
	}
	return h.reader.Permission()
}

func (h *helperSet) snapshot(execCtx *pongo2.ExecutionContext) any {
	if execCtx == nil || execCtx.Public == nil {
		return nil
	}
	key := h.cfg.SnapshotKey
	if key == "" {
		key = TemplateSnapshotKey
	}
	raw, ok := execCtx.Public[key]
	if !ok {
		return nil
	}
	return raw
}

func (h *helperSet) errorOrFallback(helper string, err error, fallback any) any {
	if h.cfg.EnableErrorLogging {
		h.logHelperError(helper, err)
	}
	if h.cfg.EnableStructuredErrors {
		return templateError(helper, err)
	}
	return fallback
}

// TemplateError provides structured helper error output.
type TemplateError struct {
	Helper   string         `json:"helper"`
	Type     string         `json:"type,omitempty"`
	Message  string         `json:"message,omitempty"`
	Category string         `json:"category,omitempty"`
	TextCode string         `json:"text_code,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func templateError(helper string, err error) TemplateError {
	out := TemplateError{Helper: helper}
	if err == nil {
		return out
	}
	if rich, ok := ferrors.As(err); ok {
		out.Message = rich.Message
		out.Category = rich.Category.String()
		out.TextCode = rich.TextCode
		if len(rich.Metadata) > 0 {
			out.Metadata = rich.Metadata
		}
		if out.TextCode != "" {
			out.Type = out.TextCode
		} else {
			out.Type = out.Category
		}
		return out
	}
	out.Message = err.Error()
	out.Type = "error"
	return out
}

func (h *helperSet) logHelperError(helper string, err error) {
	if h == nil || h.cfg.Logger == nil {
		return
	}
	args := []any{
		"helper", helper,
		"error", err,
	}
	if rich, ok := ferrors.As(err); ok {
		args = append(args,
			"category", rich.Category,
			"text_code", rich.TextCode,
			"metadata", rich.Metadata,
		)
	}
	h.cfg.Logger.Error("permissiongate.helper_error", args...)
}

func snapshotRecord(snapshot any) (gate.Record, bool) {
	switch typed := snapshot.(type) {
	case gate.Record:
		return typed, true
	case *gate.Record:
		if typed == nil {
			return gate.Record{}, false
		}
		return *typed, true
	case gate.Reader:
		return typed.Permission(), true
	case map[string]gate.State:
		return gate.FromMap(typed), true
	case map[string]string:
		states := make(map[string]gate.State, len(typed))
		for key, value := range typed {
			state := gate.State(value)
			if !state.Valid() {
				return gate.Record{}, false
			}
			states[key] = state
		}
		return gate.FromMap(states), true
	case map[string]bool:
		states := make(map[string]gate.State, len(typed))
		for key, value := range typed {
			states[key] = gate.FromBool(value)
		}
		return gate.FromMap(states), true
	}
	return gate.Record{}, false
}

func parseKey(value any) (string, bool) {
	raw := unwrapValue(value)
	switch typed := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		return trimmed, trimmed != ""
	case fmt.Stringer:
		trimmed := strings.TrimSpace(typed.String())
		return trimmed, trimmed != ""
	default:
		return "", false
	}
}

func parseKeys(values ...any) []string {
	keys := make([]string, 0, len(values))
	for _, value := range values {
		for _, key := range flattenKeys(value) {
			if parsed, ok := parseKey(key); ok {
				keys = append(keys, parsed)
			}
		}
	}
	return keys
}

func flattenKeys(value any) []any {
	value = unwrapValue(value)
	switch typed := value.(type) {
	case []string:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, item)
		}
		return out
	case []any:
		return typed
	default:
		return []any{value}
	}
}

func unwrapValue(value any) any {
	if value == nil {
		return nil
	}
	if pv, ok := value.(*pongo2.Value); ok && pv != nil {
		return pv.Interface()
	}
	return value
}
