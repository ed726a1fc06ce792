package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/logger"
	"github.com/goliatone/go-permissiongate/urlbuilder"
)

// DefaultEndpoint is the path queried when no endpoint is configured.
const DefaultEndpoint = "/authorizations"

const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderOrgID    = "X-Org-ID"
	HeaderUserID   = "X-User-ID"
)

// maxBodyBytes bounds the permission body read from the wire.
const maxBodyBytes = 1 << 20

// HTTPFetcher issues GET requests for the permission body and decodes the
// response as JSON.
type HTTPFetcher struct {
	client   *http.Client
	baseURL  string
	endpoint string
	builder  urlbuilder.Builder
	route    urlbuilder.Route
	headers  http.Header
	logger   logger.Logger
}

// HTTPOption customizes an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient sets the HTTP client.
func WithClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if f == nil || client == nil {
			return
		}
		f.client = client
	}
}

// WithBaseURL prefixes the endpoint with base.
func WithBaseURL(base string) HTTPOption {
	return func(f *HTTPFetcher) {
		if f == nil {
			return
		}
		f.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithEndpoint overrides the endpoint path or absolute URL.
func WithEndpoint(endpoint string) HTTPOption {
	return func(f *HTTPFetcher) {
		if f == nil {
			return
		}
		f.endpoint = strings.TrimSpace(endpoint)
	}
}

// WithRoute resolves the endpoint through builder on every fetch.
func WithRoute(builder urlbuilder.Builder, route urlbuilder.Route) HTTPOption {
	return func(f *HTTPFetcher) {
		if f == nil {
			return
		}
		f.builder = builder
		f.route = route
	}
}

// WithHeader adds a static request header.
func WithHeader(key, value string) HTTPOption {
	return func(f *HTTPFetcher) {
		if f == nil || strings.TrimSpace(key) == "" {
			return
		}
		f.headers.Add(key, value)
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(lgr logger.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		if f == nil || lgr == nil {
			return
		}
		f.logger = lgr
	}
}

// NewHTTPFetcher constructs an HTTPFetcher querying DefaultEndpoint.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   http.DefaultClient,
		endpoint: DefaultEndpoint,
		headers:  http.Header{},
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Endpoint returns the URL the next fetch will request.
func (f *HTTPFetcher) Endpoint() (string, error) {
	if f == nil {
		return "", ferrors.WrapSentinel(ferrors.ErrFetcherRequired, "", nil)
	}
	if f.builder != nil {
		url, err := urlbuilder.ResolveRoute(f.builder, f.route)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(url) != "" {
			return f.join(url), nil
		}
	}
	if f.endpoint == "" {
		return "", ferrors.WrapSentinel(ferrors.ErrEndpointRequired, "", map[string]any{
			ferrors.MetaOperation: "fetch",
		})
	}
	return f.join(f.endpoint), nil
}

func (f *HTTPFetcher) join(endpoint string) string {
	if f.baseURL == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	return f.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, scope gate.ScopeSet) (any, error) {
	url, err := f.Endpoint()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	meta := map[string]any{
		ferrors.MetaEndpoint:  url,
		ferrors.MetaMethod:    http.MethodGet,
		ferrors.MetaOperation: "fetch",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ferrors.WrapInternal(err, ferrors.TextCodeRequestBuild, "transport: build request", meta)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range f.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	setScopeHeaders(req.Header, scope)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ferrors.WrapExternal(err, ferrors.TextCodeTransportFailed, "", meta)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		meta[ferrors.MetaStatus] = resp.StatusCode
		return nil, ferrors.NewExternal(ferrors.TextCodeTransportStatus,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url), meta)
	}

	var raw any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return nil, ferrors.WrapExternal(err, ferrors.TextCodeBodyMalformed, "malformed permission body: "+err.Error(), meta)
	}
	f.logger.Debug("permissiongate.fetch", "endpoint", url, "status", resp.StatusCode)
	return raw, nil
}

func setScopeHeaders(header http.Header, scope gate.ScopeSet) {
	if scope.TenantID != "" {
		header.Set(HeaderTenantID, scope.TenantID)
	}
	if scope.OrgID != "" {
		header.Set(HeaderOrgID, scope.OrgID)
	}
	if scope.UserID != "" {
		header.Set(HeaderUserID, scope.UserID)
	}
}

var _ Fetcher = (*HTTPFetcher)(nil)
