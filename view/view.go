package view

import (
	"bytes"
	"io"
)

// View is an opaque renderable node.
type View interface {
	Render(w io.Writer) error
}

// Func adapts a function to View.
type Func func(w io.Writer) error

// Render implements View.
func (fn Func) Render(w io.Writer) error {
	if fn == nil {
		return nil
	}
	return fn(w)
}

// Text renders a fixed string.
type Text string

// Render implements View.
func (t Text) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(t))
	return err
}

// Empty renders nothing.
var Empty View = Func(nil)

// Or returns v, or fallback when v is nil.
func Or(v View, fallback View) View {
	if v != nil {
		return v
	}
	if fallback != nil {
		return fallback
	}
	return Empty
}

// String renders v into a string.
func String(v View) (string, error) {
	if v == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
