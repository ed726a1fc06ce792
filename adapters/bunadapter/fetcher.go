package bunadapter

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/transport"
)

// DefaultTable is the default table name for permission grants.
const DefaultTable = "permission_grants"

// ErrDBRequired indicates the underlying Bun DB is missing.
var ErrDBRequired = ferrors.ErrDBRequired

// Fetcher reads permission grants from a SQL table and returns them as the
// raw body a schema validator expects: a flat object of booleans.
type Fetcher struct {
	db    bun.IDB
	table string
}

// Option customizes the Bun fetcher.
type Option func(*Fetcher)

// NewFetcher constructs a new Bun-backed permission fetcher.
func NewFetcher(db bun.IDB, opts ...Option) *Fetcher {
	adapter := &Fetcher{
		db:    db,
		table: DefaultTable,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.table == "" {
		adapter.table = DefaultTable
	}
	return adapter
}

// WithTable sets the table name used for grants.
func WithTable(table string) Option {
	return func(adapter *Fetcher) {
		if adapter == nil {
			return
		}
		adapter.table = strings.TrimSpace(table)
	}
}

// GrantRecord maps to the permission_grants table.
type GrantRecord struct {
	bun.BaseModel `bun:"table:permission_grants"`
	Key           string `bun:"key,pk"`
	ScopeType     string `bun:"scope_type,pk"`
	ScopeID       string `bun:"scope_id,pk"`
	Granted       *bool  `bun:"granted,nullzero"`
}

// Fetch implements transport.Fetcher. Grants are read from the system scope
// up to the user scope; a more specific scope replaces a broader one. Rows
// with a NULL grant are skipped.
func (f *Fetcher) Fetch(ctx context.Context, scopeSet gate.ScopeSet) (any, error) {
	if f == nil || f.db == nil {
		return nil, ferrors.WrapSentinel(ferrors.ErrDBRequired, "bunadapter: db is required", map[string]any{
			ferrors.MetaAdapter:   "bun",
			ferrors.MetaOperation: "fetch",
		})
	}
	body := map[string]any{}
	for _, scope := range readScopes(scopeSet) {
		var rows []GrantRecord
		query := f.db.NewSelect().Model(&rows).
			Where("scope_type = ?", scope.kind).
			Where("scope_id = ?", scope.id).
			Order("key ASC")
		if f.table != "" {
			query = query.ModelTableExpr(f.table)
		}
		if err := query.Scan(ctx); err != nil {
			return nil, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "bunadapter: read grants", map[string]any{
				ferrors.MetaAdapter:   "bun",
				ferrors.MetaTable:     f.table,
				ferrors.MetaScope:     string(scope.kind),
				ferrors.MetaOperation: "fetch",
			})
		}
		for _, row := range rows {
			key := strings.TrimSpace(row.Key)
			if key == "" || row.Granted == nil {
				continue
			}
			body[key] = *row.Granted
		}
	}
	return body, nil
}

type scopeKey struct {
	kind scopeKind
	id   string
}

type scopeKind string

const (
	scopeSystem scopeKind = "system"
	scopeTenant scopeKind = "tenant"
	scopeOrg    scopeKind = "org"
	scopeUser   scopeKind = "user"
)

// readScopes lists scopes from broadest to most specific.
func readScopes(scopeSet gate.ScopeSet) []scopeKey {
	scopes := make([]scopeKey, 0, 4)
	scopes = append(scopes, scopeKey{kind: scopeSystem})
	if scopeSet.TenantID != "" {
		scopes = append(scopes, scopeKey{kind: scopeTenant, id: scopeSet.TenantID})
	}
	if scopeSet.OrgID != "" {
		scopes = append(scopes, scopeKey{kind: scopeOrg, id: scopeSet.OrgID})
	}
	if scopeSet.UserID != "" {
		scopes = append(scopes, scopeKey{kind: scopeUser, id: scopeSet.UserID})
	}
	return scopes
}

var _ transport.Fetcher = (*Fetcher)(nil)
