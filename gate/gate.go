package gate

import "context"

// ScopeSet identifies whose permissions are loaded by a fetcher.
type ScopeSet struct {
	TenantID string
	OrgID    string
	UserID   string
}

// Empty reports whether no identifier is set.
func (s ScopeSet) Empty() bool {
	return s == ScopeSet{}
}

// ScopeResolver derives a ScopeSet from context.
type ScopeResolver interface {
	Resolve(ctx context.Context) (ScopeSet, error)
}

// ScopeResolverFunc adapts a function to ScopeResolver.
type ScopeResolverFunc func(context.Context) (ScopeSet, error)

// Resolve implements ScopeResolver.
func (fn ScopeResolverFunc) Resolve(ctx context.Context) (ScopeSet, error) {
	if fn == nil {
		return ScopeSet{}, nil
	}
	return fn(ctx)
}

// Stage is the lifecycle position of the fetch-decode pipeline.
type Stage string

const (
	StageNotStarted Stage = "not_started"
	StagePending    Stage = "pending"
	StageFailed     Stage = "failed"
	StageSucceeded  Stage = "succeeded"
)

// DebugOptions controls diagnostic rendering and the forced override record.
// OverrideWith is only honored when Debug is true.
type DebugOptions struct {
	Debug        bool
	OverrideWith *Record
}

// NoDebug disables debug behavior.
func NoDebug() DebugOptions {
	return DebugOptions{}
}

// Debug enables diagnostic rendering without an override.
func Debug() DebugOptions {
	return DebugOptions{Debug: true}
}

// DebugWithOverride enables debug mode and forces every resolved record to rec.
func DebugWithOverride(rec Record) DebugOptions {
	return DebugOptions{Debug: true, OverrideWith: &rec}
}

// Override returns the forced record when debug mode carries one.
func (o DebugOptions) Override() (Record, bool) {
	if !o.Debug || o.OverrideWith == nil {
		return Record{}, false
	}
	return *o.OverrideWith, true
}
