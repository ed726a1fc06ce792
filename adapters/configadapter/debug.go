package configadapter

import (
	"strings"

	"github.com/goliatone/go-config/config"
	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/schema"
)

// NewDebugOptions reads debug settings from a config map:
//
//	debug:    bool or OptionalBool
//	override: nested map of key -> bool, OptionalBool or state name
//
// Override keys the schema does not declare are rejected. Declared keys left
// out, or set to an unset OptionalBool, are Denied.
func NewDebugOptions(data map[string]any, s *schema.Schema, opts ...Option) (gate.DebugOptions, error) {
	cfg := buildOptions(opts)
	out := gate.DebugOptions{}
	if set, value, ok := boolFromValue(data["debug"]); ok && set {
		out.Debug = value
	}

	raw, ok := data["override"].(map[string]any)
	if !ok || len(raw) == 0 {
		return out, nil
	}
	if s == nil {
		return gate.DebugOptions{}, ferrors.WrapSentinel(ferrors.ErrSchemaRequired, "", map[string]any{
			ferrors.MetaAdapter:   "config",
			ferrors.MetaOperation: "debug_override",
		})
	}

	states := map[string]gate.State{}
	if err := flattenOverride("", raw, cfg.delimiter, states); err != nil {
		return gate.DebugOptions{}, err
	}
	entries := make([]gate.Entry, 0, s.Len())
	for key := range states {
		if !s.Has(key) {
			return gate.DebugOptions{}, ferrors.WrapSentinel(ferrors.ErrOverrideInvalid, "", map[string]any{
				ferrors.MetaAdapter:       "config",
				ferrors.MetaPermissionKey: key,
			})
		}
	}
	for _, key := range s.Keys() {
		state, ok := states[key]
		if !ok {
			state = gate.StateDenied
		}
		entries = append(entries, gate.Entry{Key: key, State: state})
	}
	override := gate.NewRecord(entries...)
	out.OverrideWith = &override
	return out, nil
}

func flattenOverride(prefix string, data map[string]any, delim string, out map[string]gate.State) error {
	for key, value := range data {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		path := joinPath(prefix, trimmed, delim)
		if nested, ok := value.(map[string]any); ok {
			if err := flattenOverride(path, nested, delim, out); err != nil {
				return err
			}
			continue
		}
		state, ok := stateFromValue(value)
		if !ok {
			return ferrors.WrapSentinel(ferrors.ErrOverrideInvalid, "configadapter: override values must be booleans or states", map[string]any{
				ferrors.MetaAdapter:       "config",
				ferrors.MetaPermissionKey: path,
			})
		}
		out[path] = state
	}
	return nil
}

func stateFromValue(value any) (gate.State, bool) {
	if text, ok := value.(string); ok {
		state := gate.State(strings.TrimSpace(text))
		return state, state.Valid()
	}
	set, flag, ok := boolFromValue(value)
	if !ok {
		return "", false
	}
	if !set {
		return gate.StateDenied, true
	}
	return gate.FromBool(flag), true
}

type optionalBool interface {
	IsSet() bool
	Value() bool
}

// boolFromValue returns (set, value, recognized).
func boolFromValue(value any) (bool, bool, bool) {
	switch typed := value.(type) {
	case config.OptionalBool:
		return typed.IsSet(), typed.Value(), true
	case *config.OptionalBool:
		if typed == nil {
			return false, false, true
		}
		return typed.IsSet(), typed.Value(), true
	case optionalBool:
		return typed.IsSet(), typed.Value(), true
	case bool:
		return true, typed, true
	case *bool:
		if typed == nil {
			return false, false, true
		}
		return true, *typed, true
	default:
		return false, false, false
	}
}
