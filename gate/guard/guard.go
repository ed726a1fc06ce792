package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/view"
)

// ErrPermissionDenied is returned when no requested role is granted and no
// custom error is provided.
var ErrPermissionDenied = ferrors.ErrPermissionDenied

// ErrPermissionLoading is returned while the published record is still loading.
var ErrPermissionLoading = ferrors.ErrPermissionLoading

// CheckAccess folds rec and the requested roles into a single state. An
// empty record is Denied. A record whose first declared entry is Loading is
// Loading; records are expected to be uniformly Loading or not at all.
// Otherwise the result is Granted when any requested role present in rec is
// Granted, and Denied in every other case.
func CheckAccess(rec gate.Record, roles []string) gate.State {
	first, ok := rec.First()
	if !ok {
		return gate.StateDenied
	}
	if first.State == gate.StateLoading {
		return gate.StateLoading
	}
	if rec.Filter(roles).Any(gate.StateGranted) {
		return gate.StateGranted
	}
	return gate.StateDenied
}

// Check renders the branch selected by CheckAccess. A nil branch renders
// nothing.
type Check struct {
	Reader   gate.Reader
	Roles    []string
	Children view.View
	Denied   view.View
	Loading  view.View
}

// State returns the aggregate state for the configured roles.
func (c Check) State() gate.State {
	if c.Reader == nil {
		return gate.StateDenied
	}
	return CheckAccess(c.Reader.Permission(), c.Roles)
}

// Select returns the view for the current state.
func (c Check) Select() view.View {
	switch c.State() {
	case gate.StateGranted:
		return view.Or(c.Children, nil)
	case gate.StateLoading:
		return view.Or(c.Loading, nil)
	default:
		return view.Or(c.Denied, nil)
	}
}

// Render implements view.View.
func (c Check) Render(w io.Writer) error {
	return c.Select().Render(w)
}

// DeniedError includes the requested roles and unwraps to ErrPermissionDenied.
type DeniedError struct {
	Roles []string
}

func (e DeniedError) Error() string {
	if len(e.Roles) == 0 {
		return ErrPermissionDenied.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPermissionDenied.Error(), strings.Join(e.Roles, ", "))
}

func (e DeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// Option configures Require behavior.
type Option func(*config)

type config struct {
	deniedErr   error
	loadingErr  error
	errorMapper func(error) error
}

// WithDeniedError sets the error returned when access is denied.
func WithDeniedError(err error) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.deniedErr = err
	}
}

// WithLoadingError sets the error returned while permissions are loading.
func WithLoadingError(err error) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.loadingErr = err
	}
}

// WithErrorMapper transforms the returned error.
func WithErrorMapper(mapper func(error) error) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.errorMapper = mapper
	}
}

// Require returns nil when CheckAccess grants the roles against the record
// published by reader. A nil reader is denied.
func Require(ctx context.Context, reader gate.Reader, roles []string, opts ...Option) error {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	var rec gate.Record
	if reader != nil {
		rec = reader.Permission()
	}

	switch CheckAccess(rec, roles) {
	case gate.StateGranted:
		return nil
	case gate.StateLoading:
		if cfg.loadingErr != nil {
			return mapErr(cfg, cfg.loadingErr)
		}
		return mapErr(cfg, ferrors.WrapSentinel(ferrors.ErrPermissionLoading, "", map[string]any{
			ferrors.MetaRoles:     roles,
			ferrors.MetaOperation: "require",
		}))
	default:
		if cfg.deniedErr != nil {
			return mapErr(cfg, cfg.deniedErr)
		}
		return mapErr(cfg, DeniedError{Roles: append([]string(nil), roles...)})
	}
}

// IsDenied reports whether err signals denied access.
func IsDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func mapErr(cfg *config, err error) error {
	if err == nil {
		return nil
	}
	if cfg != nil && cfg.errorMapper != nil {
		return cfg.errorMapper(err)
	}
	return err
}
