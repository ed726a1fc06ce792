package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/transport"
)

// DefaultPrefix namespaces permission keys in Redis.
const DefaultPrefix = "permissiongate"

// Mode selects how a permission body is stored.
type Mode string

const (
	// ModeJSON stores the body as a JSON object string.
	ModeJSON Mode = "json"
	// ModeHash stores one hash field per permission key.
	ModeHash Mode = "hash"
)

// Fetcher reads the raw permission body for a scope from Redis. A missing
// key yields an empty object, which validators report as missing keys.
type Fetcher struct {
	client redis.Cmdable
	prefix string
	mode   Mode
	keyFn  func(prefix string, scope gate.ScopeSet) string
}

// Option customizes the Redis fetcher.
type Option func(*Fetcher)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(f *Fetcher) {
		if f == nil {
			return
		}
		f.prefix = strings.TrimSpace(prefix)
	}
}

// WithMode selects JSON or hash storage.
func WithMode(mode Mode) Option {
	return func(f *Fetcher) {
		if f == nil {
			return
		}
		f.mode = mode
	}
}

// WithKeyFunc overrides how a scope maps to a Redis key.
func WithKeyFunc(fn func(prefix string, scope gate.ScopeSet) string) Option {
	return func(f *Fetcher) {
		if f == nil || fn == nil {
			return
		}
		f.keyFn = fn
	}
}

// NewFetcher constructs a Redis-backed permission fetcher.
func NewFetcher(client redis.Cmdable, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: client,
		prefix: DefaultPrefix,
		mode:   ModeJSON,
		keyFn:  Key,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.prefix == "" {
		f.prefix = DefaultPrefix
	}
	return f
}

// Key builds `<prefix>:tenant:<id>:org:<id>:user:<id>`, omitting empty
// parts. An empty scope maps to `<prefix>:system`.
func Key(prefix string, scope gate.ScopeSet) string {
	parts := []string{prefix}
	if scope.TenantID != "" {
		parts = append(parts, "tenant", scope.TenantID)
	}
	if scope.OrgID != "" {
		parts = append(parts, "org", scope.OrgID)
	}
	if scope.UserID != "" {
		parts = append(parts, "user", scope.UserID)
	}
	if len(parts) == 1 {
		parts = append(parts, "system")
	}
	return strings.Join(parts, ":")
}

// Fetch implements transport.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, scope gate.ScopeSet) (any, error) {
	if f == nil || f.client == nil {
		return nil, ferrors.WrapSentinel(ferrors.ErrClientRequired, "redisadapter: client is required", map[string]any{
			ferrors.MetaAdapter:   "redis",
			ferrors.MetaOperation: "fetch",
		})
	}
	key := f.keyFn(f.prefix, scope)
	meta := map[string]any{
		ferrors.MetaAdapter:   "redis",
		ferrors.MetaRedisKey:  key,
		ferrors.MetaOperation: "fetch",
	}
	if f.mode == ModeHash {
		fields, err := f.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "redisadapter: read hash", meta)
		}
		return hashBody(fields), nil
	}

	data, err := f.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]any{}, nil
		}
		return nil, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "redisadapter: read key", meta)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ferrors.WrapExternal(err, ferrors.TextCodeBodyMalformed, "redisadapter: malformed permission body", meta)
	}
	return raw, nil
}

// hashBody converts hash fields to booleans where they parse; other values
// are kept as strings so validators can report them.
func hashBody(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if flag, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			out[key] = flag
			continue
		}
		out[key] = value
	}
	return out
}

var _ transport.Fetcher = (*Fetcher)(nil)
