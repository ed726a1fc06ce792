package templates

import (
	"context"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-permissiongate/catalog"
	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/view"
)

// DefaultEndpoint is shown by the transport diagnostic when none is configured.
const DefaultEndpoint = "/authorizations"

const decodeSource = `<div class="permission-debug permission-debug--decode" style="display:flex;align-items:center;flex-direction:column">
<h1 style="color:red">Permission Error</h1>
<h2>This is a debug message</h2>
<div>
<p>Unknown permissions: <b>{{ missing }}</b></p>
{% if missing_rows %}<ul class="permission-debug__missing">{% for row in missing_rows %}<li>{{ row.key }}{% if row.label != row.key %} ({{ row.label }}){% endif %}</li>{% endfor %}</ul>{% endif %}
<p>Permission response:</p>
<ul class="permission-debug__response">{% for row in response %}<li>{{ row.key }}: {{ row.state }}</li>{% empty %}<li>response is not a flat boolean object</li>{% endfor %}</ul>
</div>
</div>`

const transportSource = `<div class="permission-debug permission-debug--transport" style="display:flex;align-items:center;flex-direction:column">
<h1 style="color:orange">Network Error</h1>
<h2>This is a debug message</h2>
<div>
<p>Unable to reach <code>{{ endpoint }}</code></p>
<code>{{ message }}</code>
</div>
</div>`

var (
	decodeTemplate    = pongo2.Must(pongo2.FromString(decodeSource))
	transportTemplate = pongo2.Must(pongo2.FromString(transportSource))
)

// DiagnosticConfig configures diagnostic views.
type DiagnosticConfig struct {
	Endpoint          string
	Locale            string
	Catalog           catalog.Catalog
	Messages          catalog.MessageResolver
	DecodeTemplate    *pongo2.Template
	TransportTemplate *pongo2.Template
}

// DiagnosticOption configures diagnostic views.
type DiagnosticOption func(*DiagnosticConfig)

// WithEndpoint sets the endpoint shown for transport failures.
func WithEndpoint(endpoint string) DiagnosticOption {
	return func(cfg *DiagnosticConfig) {
		if cfg == nil {
			return
		}
		cfg.Endpoint = strings.TrimSpace(endpoint)
	}
}

// WithCatalog labels missing keys using catalog definitions.
func WithCatalog(c catalog.Catalog, resolver catalog.MessageResolver, locale string) DiagnosticOption {
	return func(cfg *DiagnosticConfig) {
		if cfg == nil {
			return
		}
		cfg.Catalog = c
		cfg.Messages = resolver
		cfg.Locale = locale
	}
}

// WithDecodeTemplate replaces the decode failure template.
func WithDecodeTemplate(tpl *pongo2.Template) DiagnosticOption {
	return func(cfg *DiagnosticConfig) {
		if cfg == nil {
			return
		}
		cfg.DecodeTemplate = tpl
	}
}

// WithTransportTemplate replaces the transport failure template.
func WithTransportTemplate(tpl *pongo2.Template) DiagnosticOption {
	return func(cfg *DiagnosticConfig) {
		if cfg == nil {
			return
		}
		cfg.TransportTemplate = tpl
	}
}

// Diagnostic returns the debug view for err.
func Diagnostic(err failure.Error, opts ...DiagnosticOption) view.View {
	cfg := DiagnosticConfig{
		Endpoint:          DefaultEndpoint,
		DecodeTemplate:    decodeTemplate,
		TransportTemplate: transportTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.DecodeTemplate == nil {
		cfg.DecodeTemplate = decodeTemplate
	}
	if cfg.TransportTemplate == nil {
		cfg.TransportTemplate = transportTemplate
	}

	return view.Func(func(w io.Writer) error {
		if err == nil {
			return nil
		}
		return failure.Match(err,
			func(e *failure.DecodeError) error {
				return cfg.DecodeTemplate.ExecuteWriter(decodeContext(cfg, e), w)
			},
			func(e *failure.TransportError) error {
				return cfg.TransportTemplate.ExecuteWriter(pongo2.Context{
					"endpoint": cfg.Endpoint,
					"message":  e.Message,
				}, w)
			},
		)
	})
}

// DiagnosticFunc binds options into a reusable diagnostic constructor.
func DiagnosticFunc(opts ...DiagnosticOption) func(failure.Error) view.View {
	return func(err failure.Error) view.View {
		return Diagnostic(err, opts...)
	}
}

func decodeContext(cfg DiagnosticConfig, e *failure.DecodeError) pongo2.Context {
	missingRows := make([]map[string]any, 0, len(e.MissingKeys))
	for _, key := range e.MissingKeys {
		missingRows = append(missingRows, map[string]any{
			"key":   key,
			"label": catalog.Describe(context.Background(), cfg.Catalog, cfg.Messages, cfg.Locale, key),
		})
	}
	response := make([]map[string]any, 0, e.Response.Len())
	for _, entry := range e.Response.Entries() {
		response = append(response, map[string]any{
			"key":   entry.Key,
			"state": string(entry.State),
		})
	}
	return pongo2.Context{
		"missing":      strings.Join(e.MissingKeys, ","),
		"missing_rows": missingRows,
		"response":     response,
	}
}
