package configadapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/schema"
)

// NewSchema builds a schema from config. Accepted shapes are a list of keys
// ([]string or []any of strings) and a nested map whose leaf paths become
// keys. Map keys are declared in lexical order since config maps carry no
// order.
func NewSchema(data any, opts ...Option) (*schema.Schema, error) {
	cfg := buildOptions(opts)
	var keys []string
	switch typed := data.(type) {
	case []string:
		keys = append(keys, typed...)
	case []any:
		for _, value := range typed {
			key, ok := value.(string)
			if !ok {
				return nil, ferrors.WrapSentinel(ferrors.ErrSchemaInvalid, "configadapter: schema keys must be strings", map[string]any{
					ferrors.MetaAdapter:   "config",
					ferrors.MetaFieldType: fmt.Sprintf("%T", value),
				})
			}
			keys = append(keys, key)
		}
	case map[string]any:
		flattenKeys("", typed, cfg.delimiter, &keys)
		sort.Strings(keys)
	case nil:
	default:
		return nil, ferrors.WrapSentinel(ferrors.ErrSchemaInvalid, "configadapter: unsupported schema source", map[string]any{
			ferrors.MetaAdapter:   "config",
			ferrors.MetaFieldType: fmt.Sprintf("%T", data),
		})
	}

	var schemaOpts []schema.Option
	if cfg.schemaName != "" {
		schemaOpts = append(schemaOpts, schema.WithName(cfg.schemaName))
	}
	return schema.New(keys, schemaOpts...)
}

func flattenKeys(prefix string, data map[string]any, delim string, out *[]string) {
	for key, value := range data {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		path := joinPath(prefix, trimmed, delim)
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 && !isLeafDefinition(nested) {
			flattenKeys(path, nested, delim, out)
			continue
		}
		*out = append(*out, path)
	}
}

// isLeafDefinition reports whether a map describes a key rather than a group.
func isLeafDefinition(data map[string]any) bool {
	for _, field := range []string{"label", "description", "description_key", "description_text"} {
		if _, ok := data[field]; ok {
			return true
		}
	}
	return false
}
