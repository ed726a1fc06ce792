package schema

import (
	"reflect"
	"strings"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
)

// Schema declares the closed, ordered set of permission keys. Every key is
// a boolean flag on the wire. A *Schema is compared by identity.
type Schema struct {
	name  string
	keys  []string
	index map[string]int
}

// Option configures a Schema.
type Option func(*Schema)

// WithName labels the schema for logs and diagnostics.
func WithName(name string) Option {
	return func(s *Schema) {
		if s == nil {
			return
		}
		s.name = strings.TrimSpace(name)
	}
}

// New declares a schema from keys. Keys are trimmed; empty or duplicated
// keys are rejected, as is an empty key set.
func New(keys []string, opts ...Option) (*Schema, error) {
	s := &Schema{
		keys:  make([]string, 0, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	for _, raw := range keys {
		key := strings.TrimSpace(raw)
		if key == "" {
			return nil, ferrors.WrapSentinel(ferrors.ErrInvalidKey, "", map[string]any{
				ferrors.MetaPermissionKeys: keys,
				ferrors.MetaOperation:      "schema_new",
			})
		}
		if _, ok := s.index[key]; ok {
			return nil, ferrors.WrapSentinel(ferrors.ErrDuplicateKey, "", map[string]any{
				ferrors.MetaPermissionKey: key,
				ferrors.MetaOperation:     "schema_new",
			})
		}
		s.index[key] = len(s.keys)
		s.keys = append(s.keys, key)
	}
	if len(s.keys) == 0 {
		return nil, ferrors.WrapSentinel(ferrors.ErrSchemaInvalid, "", map[string]any{
			ferrors.MetaOperation: "schema_new",
		})
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Must is like New but panics on error. Intended for package-level schemas.
func Must(keys []string, opts ...Option) *Schema {
	s, err := New(keys, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Of derives a schema from the exported bool fields of struct T. The json
// tag name is used when present and fields tagged `json:"-"` are skipped.
func Of[T any](opts ...Option) (*Schema, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, ferrors.WrapSentinel(ferrors.ErrSchemaInvalid, "schema source must be a struct", map[string]any{
			ferrors.MetaFieldType: typ.String(),
			ferrors.MetaOperation: "schema_of",
		})
	}
	keys := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		if field.Type.Kind() != reflect.Bool {
			return nil, ferrors.WrapSentinel(ferrors.ErrSchemaInvalid, "schema fields must be bool", map[string]any{
				ferrors.MetaPermissionKey: name,
				ferrors.MetaFieldType:     field.Type.String(),
				ferrors.MetaOperation:     "schema_of",
			})
		}
		keys = append(keys, name)
	}
	if len(opts) == 0 {
		opts = []Option{WithName(typ.Name())}
	}
	return New(keys, opts...)
}

func fieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name := strings.TrimSpace(strings.Split(tag, ",")[0])
	if name == "" {
		name = field.Name
	}
	return name, false
}

// Name returns the schema label.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Keys returns the declared keys in order.
func (s *Schema) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of declared keys.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Has reports whether key is declared.
func (s *Schema) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// MapTo assigns state to every declared key.
func (s *Schema) MapTo(state gate.State) gate.Record {
	return gate.Uniform(s.Keys(), state)
}

// MapTo assigns state to every key declared by s.
func MapTo(s *Schema, state gate.State) gate.Record {
	return s.MapTo(state)
}

// Restrict drops entries of rec that are not declared by s.
func (s *Schema) Restrict(rec gate.Record) gate.Record {
	return rec.Filter(s.Keys())
}

// Conforms reports whether rec holds exactly the declared key set.
func (s *Schema) Conforms(rec gate.Record) bool {
	if s == nil || rec.Len() != len(s.keys) {
		return false
	}
	for _, key := range s.keys {
		if !rec.Has(key) {
			return false
		}
	}
	return true
}
