package catalog

import (
	"context"
	"sort"
	"strings"
)

// Message represents a human-friendly string with optional localization data.
type Message struct {
	Key  string
	Text string
	Args map[string]any
}

// PermissionDefinition describes a permission key for diagnostics and docs.
type PermissionDefinition struct {
	Key         string
	Label       string
	Description Message
}

// Catalog exposes permission definitions by key.
type Catalog interface {
	Get(key string) (PermissionDefinition, bool)
	List() []PermissionDefinition
}

// MessageResolver resolves a Message to a display string.
type MessageResolver interface {
	Resolve(ctx context.Context, locale string, msg Message) (string, error)
}

// PlainResolver returns the Message text or key without localization.
type PlainResolver struct{}

// Resolve implements MessageResolver.
func (PlainResolver) Resolve(_ context.Context, _ string, msg Message) (string, error) {
	if msg.Text != "" {
		return msg.Text, nil
	}
	return msg.Key, nil
}

// StaticCatalog provides an in-memory catalog.
type StaticCatalog struct {
	defs map[string]PermissionDefinition
}

// NewStatic builds an in-memory catalog from provided definitions.
func NewStatic(defs map[string]PermissionDefinition) *StaticCatalog {
	out := make(map[string]PermissionDefinition, len(defs))
	for key, def := range defs {
		normalized := strings.TrimSpace(key)
		if normalized == "" {
			continue
		}
		def.Key = normalized
		def.Label = strings.TrimSpace(def.Label)
		def.Description = normalizeMessage(def.Description)
		out[normalized] = def
	}
	return &StaticCatalog{defs: out}
}

// Get implements Catalog.
func (c *StaticCatalog) Get(key string) (PermissionDefinition, bool) {
	if c == nil || len(c.defs) == 0 {
		return PermissionDefinition{}, false
	}
	def, ok := c.defs[strings.TrimSpace(key)]
	return def, ok
}

// List implements Catalog.
func (c *StaticCatalog) List() []PermissionDefinition {
	if c == nil || len(c.defs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defs))
	for key := range c.defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]PermissionDefinition, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.defs[key])
	}
	return out
}

// Keys returns the catalog keys in lexical order.
func (c *StaticCatalog) Keys() []string {
	defs := c.List()
	keys := make([]string, 0, len(defs))
	for _, def := range defs {
		keys = append(keys, def.Key)
	}
	return keys
}

// Describe returns the display text for key: the label, then the resolved
// description, then the key itself.
func Describe(ctx context.Context, c Catalog, resolver MessageResolver, locale, key string) string {
	if c == nil {
		return key
	}
	def, ok := c.Get(key)
	if !ok {
		return key
	}
	if def.Label != "" {
		return def.Label
	}
	if resolver == nil {
		resolver = PlainResolver{}
	}
	text, err := resolver.Resolve(ctx, locale, def.Description)
	if err != nil || strings.TrimSpace(text) == "" {
		return key
	}
	return text
}

func normalizeMessage(msg Message) Message {
	msg.Key = strings.TrimSpace(msg.Key)
	msg.Text = strings.TrimSpace(msg.Text)
	if len(msg.Args) == 0 {
		msg.Args = nil
	}
	return msg
}
