package jsonschemaadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/schema"
)

const resourceBase = "https://permissiongate.schemas.local/"

// Validator validates permission bodies with a JSON Schema generated from
// the permission schema: an object whose declared keys are required
// booleans. Undeclared properties are allowed.
type Validator struct {
	mu       sync.Mutex
	compiled map[*schema.Schema]*jsonschema.Schema
}

// New constructs a Validator.
func New() *Validator {
	return &Validator{compiled: map[*schema.Schema]*jsonschema.Schema{}}
}

// Document returns the JSON Schema generated for s.
func Document(s *schema.Schema) map[string]any {
	properties := make(map[string]any, s.Len())
	for _, key := range s.Keys() {
		properties[key] = map[string]any{"type": "boolean"}
	}
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
		"required":   s.Keys(),
	}
}

// Decode implements schema.Validator.
func (v *Validator) Decode(s *schema.Schema, raw any) (map[string]bool, error) {
	if s == nil {
		return nil, ferrors.WrapSentinel(ferrors.ErrSchemaRequired, "", map[string]any{
			ferrors.MetaAdapter: "jsonschema",
		})
	}
	compiled, err := v.compile(s)
	if err != nil {
		return nil, err
	}
	instance, err := normalize(raw)
	if err != nil {
		return nil, &schema.ValidationError{
			Schema: s.Name(),
			Complaints: []schema.Complaint{{
				Path:    []string{""},
				Message: fmt.Sprintf("expected object, got %T", raw),
				Value:   raw,
			}},
		}
	}

	if err := compiled.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, ferrors.WrapExternal(err, ferrors.TextCodeAdapterFailed, "jsonschemaadapter: validate", map[string]any{
				ferrors.MetaAdapter: "jsonschema",
			})
		}
		return nil, &schema.ValidationError{Schema: s.Name(), Complaints: complaints(s, verr, instance)}
	}

	object := instance.(map[string]any)
	out := make(map[string]bool, s.Len())
	for _, key := range s.Keys() {
		out[key], _ = object[key].(bool)
	}
	return out, nil
}

func (v *Validator) compile(s *schema.Schema) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.compiled == nil {
		v.compiled = map[*schema.Schema]*jsonschema.Schema{}
	}
	if compiled, ok := v.compiled[s]; ok {
		return compiled, nil
	}

	meta := map[string]any{
		ferrors.MetaAdapter:        "jsonschema",
		ferrors.MetaPermissionKeys: s.Keys(),
	}
	doc, err := json.Marshal(Document(s))
	if err != nil {
		return nil, ferrors.WrapInternal(err, ferrors.TextCodeSchemaCompile, "jsonschemaadapter: encode schema", meta)
	}
	name := s.Name()
	if name == "" {
		name = "permissions"
	}
	url := fmt.Sprintf("%s%s-%p.schema.json", resourceBase, name, s)

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, ferrors.WrapInternal(err, ferrors.TextCodeSchemaCompile, "jsonschemaadapter: load schema", meta)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, ferrors.WrapInternal(err, ferrors.TextCodeSchemaCompile, "jsonschemaadapter: compile schema", meta)
	}
	v.compiled[s] = compiled
	return compiled, nil
}

// normalize converts raw into the JSON value model the validator expects.
// Strings and byte slices are not parsed; only structured values are.
func normalize(raw any) (any, error) {
	switch typed := raw.(type) {
	case map[string]any:
		return typed, nil
	case json.RawMessage:
		var out any
		if err := json.Unmarshal(typed, &out); err != nil {
			return nil, err
		}
		return out, nil
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func complaints(s *schema.Schema, verr *jsonschema.ValidationError, instance any) []schema.Complaint {
	var out []schema.Complaint
	for _, leaf := range leaves(verr) {
		if strings.HasSuffix(leaf.KeywordLocation, "/required") {
			object, _ := instance.(map[string]any)
			for _, key := range s.Keys() {
				if _, ok := object[key]; !ok {
					out = append(out, schema.Complaint{
						Path:    []string{"", key},
						Message: "missing boolean",
					})
				}
			}
			continue
		}
		path := strings.Split(leaf.InstanceLocation, "/")
		out = append(out, schema.Complaint{
			Path:    unescape(path),
			Message: leaf.Message,
			Value:   valueAt(instance, path),
		})
	}
	if len(out) == 0 {
		out = append(out, schema.Complaint{Path: []string{""}, Message: verr.Message})
	}
	return out
}

func leaves(verr *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if verr == nil {
		return nil
	}
	if len(verr.Causes) == 0 {
		return []*jsonschema.ValidationError{verr}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range verr.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

func unescape(path []string) []string {
	out := make([]string, len(path))
	for i, part := range path {
		part = strings.ReplaceAll(part, "~1", "/")
		out[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return out
}

func valueAt(instance any, path []string) any {
	current := instance
	for _, part := range unescape(path) {
		if part == "" {
			continue
		}
		object, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = object[part]
	}
	return current
}

var _ schema.Validator = (*Validator)(nil)
