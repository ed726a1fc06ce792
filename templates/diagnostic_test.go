package templates

import (
	"errors"
	"strings"
	"testing"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-permissiongate/catalog"
	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/schema"
	"github.com/goliatone/go-permissiongate/view"
)

func TestDiagnosticDecodeListsMissingKeysAndResponse(t *testing.T) {
	denied := gate.Uniform([]string{"test", "unknown"}, gate.StateDenied)
	decodeErr := failure.BuildDecodeError(
		[]schema.Complaint{{Path: []string{"", "unknown"}, Message: "missing boolean"}},
		map[string]any{"test": true},
		denied,
	)

	out, err := view.String(Diagnostic(decodeErr))
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if !strings.Contains(out, "Permission Error") {
		t.Fatalf("expected decode heading, got %q", out)
	}
	if !strings.Contains(out, "<b>unknown</b>") {
		t.Fatalf("expected missing keys, got %q", out)
	}
	if !strings.Contains(out, "test: Granted") {
		t.Fatalf("expected response table, got %q", out)
	}
}

func TestDiagnosticDecodeUsesCatalogLabels(t *testing.T) {
	cat := catalog.NewStatic(map[string]catalog.PermissionDefinition{
		"orders.refund": {Label: "Refund orders"},
	})
	decodeErr := failure.BuildDecodeError(
		[]schema.Complaint{{Path: []string{"orders.refund"}}},
		"garbage=1",
		gate.Uniform([]string{"orders.refund"}, gate.StateDenied),
	)

	out, err := view.String(Diagnostic(decodeErr, WithCatalog(cat, nil, "en")))
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if !strings.Contains(out, "Refund orders") {
		t.Fatalf("expected catalog label, got %q", out)
	}
	if !strings.Contains(out, "response is not a flat boolean object") {
		t.Fatalf("expected empty response marker, got %q", out)
	}
}

func TestDiagnosticTransportShowsMessage(t *testing.T) {
	transportErr := failure.BuildTransportError(errors.New("connection refused"))

	out, err := view.String(Diagnostic(transportErr, WithEndpoint("https://api.local/authorizations")))
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if !strings.Contains(out, "Network Error") {
		t.Fatalf("expected transport heading, got %q", out)
	}
	if !strings.Contains(out, "https://api.local/authorizations") {
		t.Fatalf("expected endpoint, got %q", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Fatalf("expected message, got %q", out)
	}
}

func TestDiagnosticCustomTemplate(t *testing.T) {
	tpl := pongo2.Must(pongo2.FromString("down: {{ message }}"))
	transportErr := failure.BuildTransportError(errors.New("timeout"))

	out, err := view.String(DiagnosticFunc(WithTransportTemplate(tpl))(transportErr))
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if out != "down: timeout" {
		t.Fatalf("unexpected output %q", out)
	}
}
