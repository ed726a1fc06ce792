package schema

import (
	"fmt"
	"strings"
)

// Complaint describes a single decode failure.
type Complaint struct {
	Path    []string
	Message string
	Value   any
}

// Key joins the non-empty path segments with ".".
func (c Complaint) Key() string {
	parts := make([]string, 0, len(c.Path))
	for _, part := range c.Path {
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}

// String implements fmt.Stringer.
func (c Complaint) String() string {
	key := c.Key()
	if key == "" {
		key = "(root)"
	}
	if c.Message == "" {
		return key
	}
	return key + ": " + c.Message
}

// ValidationError carries the complaints of a failed decode.
type ValidationError struct {
	Schema     string
	Complaints []Complaint
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Complaints) == 0 {
		return "schema: validation failed"
	}
	parts := make([]string, 0, len(e.Complaints))
	for _, complaint := range e.Complaints {
		parts = append(parts, complaint.String())
	}
	return fmt.Sprintf("schema: validation failed: %s", strings.Join(parts, "; "))
}

// Validator decodes an untrusted raw body against a schema. On success it
// returns a value for every declared key; on failure the error is a
// *ValidationError listing complaints.
type Validator interface {
	Decode(s *Schema, raw any) (map[string]bool, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(s *Schema, raw any) (map[string]bool, error)

// Decode implements Validator.
func (fn ValidatorFunc) Decode(s *Schema, raw any) (map[string]bool, error) {
	return fn(s, raw)
}

// Codec is the built-in validator. It accepts objects decoded from JSON
// (map[string]any) and map[string]bool; undeclared keys are ignored.
type Codec struct{}

// Decode implements Validator.
func (Codec) Decode(s *Schema, raw any) (map[string]bool, error) {
	if s == nil {
		return nil, &ValidationError{Complaints: []Complaint{{Message: "schema is required"}}}
	}
	var object map[string]any
	switch typed := raw.(type) {
	case map[string]any:
		object = typed
	case map[string]bool:
		object = make(map[string]any, len(typed))
		for key, value := range typed {
			object[key] = value
		}
	default:
		return nil, &ValidationError{
			Schema: s.Name(),
			Complaints: []Complaint{{
				Path:    []string{""},
				Message: fmt.Sprintf("expected object, got %T", raw),
				Value:   raw,
			}},
		}
	}

	out := make(map[string]bool, s.Len())
	var complaints []Complaint
	for _, key := range s.keys {
		value, ok := object[key]
		if !ok {
			complaints = append(complaints, Complaint{
				Path:    []string{"", key},
				Message: "missing boolean",
			})
			continue
		}
		flag, ok := value.(bool)
		if !ok {
			complaints = append(complaints, Complaint{
				Path:    []string{"", key},
				Message: fmt.Sprintf("expected boolean, got %T", value),
				Value:   value,
			})
			continue
		}
		out[key] = flag
	}
	if len(complaints) > 0 {
		return nil, &ValidationError{Schema: s.Name(), Complaints: complaints}
	}
	return out, nil
}

var _ Validator = Codec{}
