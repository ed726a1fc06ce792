package configadapter

import (
	"strings"

	"github.com/goliatone/go-permissiongate/catalog"
)

// NewCatalog builds a permission catalog from a nested map. A leaf is either
// a description string or a map with label and description fields.
func NewCatalog(data map[string]any, opts ...Option) *catalog.StaticCatalog {
	cfg := buildOptions(opts)

	defs := map[string]catalog.PermissionDefinition{}
	flattenCatalog("", data, cfg.delimiter, defs)
	return catalog.NewStatic(defs)
}

func flattenCatalog(prefix string, data map[string]any, delim string, out map[string]catalog.PermissionDefinition) {
	if len(data) == 0 {
		return
	}
	for key, value := range data {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		path := joinPath(prefix, trimmedKey, delim)

		switch typed := value.(type) {
		case map[string]any:
			if def, ok := definitionFromMap(typed); ok {
				def.Key = path
				defsAdd(out, def)
				continue
			}
			flattenCatalog(path, typed, delim, out)
		case map[string]string:
			raw := map[string]any{}
			for k, v := range typed {
				raw[k] = v
			}
			if def, ok := definitionFromMap(raw); ok {
				def.Key = path
				defsAdd(out, def)
			}
		default:
			if msg, ok := messageFromValue(value); ok {
				defsAdd(out, catalog.PermissionDefinition{
					Key:         path,
					Description: msg,
				})
			}
		}
	}
}

func defsAdd(out map[string]catalog.PermissionDefinition, def catalog.PermissionDefinition) {
	normalized := strings.TrimSpace(def.Key)
	if normalized == "" {
		return
	}
	def.Key = normalized
	out[normalized] = def
}

func definitionFromMap(data map[string]any) (catalog.PermissionDefinition, bool) {
	label, _ := data["label"].(string)
	label = strings.TrimSpace(label)
	if msg, ok := messageFromValue(data["description"]); ok {
		return catalog.PermissionDefinition{Label: label, Description: msg}, true
	}

	var msg catalog.Message
	if val, ok := data["description_key"].(string); ok && strings.TrimSpace(val) != "" {
		msg.Key = strings.TrimSpace(val)
	}
	if val, ok := data["description_text"].(string); ok && strings.TrimSpace(val) != "" {
		msg.Text = strings.TrimSpace(val)
	}
	if len(msg.Args) == 0 {
		msg.Args = nil
	}
	if msg.Key != "" || msg.Text != "" || label != "" {
		return catalog.PermissionDefinition{Label: label, Description: msg}, true
	}

	return catalog.PermissionDefinition{}, false
}

func messageFromValue(value any) (catalog.Message, bool) {
	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return catalog.Message{}, false
		}
		return catalog.Message{Text: trimmed}, true
	case map[string]any:
		return messageFromMap(typed)
	case map[string]string:
		raw := map[string]any{}
		for key, val := range typed {
			raw[key] = val
		}
		return messageFromMap(raw)
	default:
		return catalog.Message{}, false
	}
}

func messageFromMap(data map[string]any) (catalog.Message, bool) {
	if len(data) == 0 {
		return catalog.Message{}, false
	}
	msg := catalog.Message{}
	if val, ok := data["key"].(string); ok {
		msg.Key = strings.TrimSpace(val)
	}
	if val, ok := data["text"].(string); ok {
		msg.Text = strings.TrimSpace(val)
	}
	if args, ok := data["args"].(map[string]any); ok && len(args) > 0 {
		msg.Args = args
	} else if args, ok := data["args"].(map[string]string); ok && len(args) > 0 {
		msg.Args = make(map[string]any, len(args))
		for key, val := range args {
			msg.Args[key] = val
		}
	}
	if msg.Key == "" && msg.Text == "" {
		return catalog.Message{}, false
	}
	if len(msg.Args) == 0 {
		msg.Args = nil
	}
	return msg, true
}
