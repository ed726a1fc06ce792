package configadapter

import (
	"testing"

	"github.com/goliatone/go-config/config"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/schema"
)

var debugSchema = schema.Must([]string{"admin", "billing.refund", "editor"})

func TestNewDebugOptionsOptionalBool(t *testing.T) {
	opts, err := NewDebugOptions(map[string]any{
		"debug": config.NewOptionalBool(true),
	}, debugSchema)
	require.NoError(t, err)
	require.True(t, opts.Debug)
	require.Nil(t, opts.OverrideWith)

	opts, err = NewDebugOptions(map[string]any{
		"debug": config.NewOptionalBoolUnset(),
	}, debugSchema)
	require.NoError(t, err)
	require.False(t, opts.Debug)
}

func TestNewDebugOptionsOverride(t *testing.T) {
	opts, err := NewDebugOptions(map[string]any{
		"debug": true,
		"override": map[string]any{
			"admin":   true,
			"billing": map[string]any{"refund": "Loading"},
		},
	}, debugSchema)
	require.NoError(t, err)

	override, ok := opts.Override()
	require.True(t, ok)
	require.True(t, debugSchema.Conforms(override))
	require.Equal(t, "{admin:Granted billing.refund:Loading editor:Denied}", override.String())
}

func TestNewDebugOptionsRejectsUnknownOverrideKey(t *testing.T) {
	_, err := NewDebugOptions(map[string]any{
		"override": map[string]any{"root": true},
	}, debugSchema)
	require.ErrorIs(t, err, ferrors.ErrOverrideInvalid)

	_, err = NewDebugOptions(map[string]any{
		"override": map[string]any{"admin": 1},
	}, debugSchema)
	require.ErrorIs(t, err, ferrors.ErrOverrideInvalid)

	_, err = NewDebugOptions(map[string]any{
		"override": map[string]any{"admin": true},
	}, nil)
	require.ErrorIs(t, err, ferrors.ErrSchemaRequired)
}

func TestNewDebugOptionsEmpty(t *testing.T) {
	opts, err := NewDebugOptions(nil, nil)
	require.NoError(t, err)
	require.Equal(t, gate.NoDebug(), opts)
}
