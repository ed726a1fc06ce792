package gologgeradapter

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-permissiongate/activity"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	level   string
	message string
	fields  map[string]any
}

type recordingLogger struct {
	entries *[]logEntry
	fields  map[string]any
}

func newRecordingLogger() (*recordingLogger, *[]logEntry) {
	entries := &[]logEntry{}
	return &recordingLogger{entries: entries}, entries
}

func (l *recordingLogger) add(level, msg string) {
	*l.entries = append(*l.entries, logEntry{level: level, message: msg, fields: l.fields})
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.add("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.add("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.add("fatal", msg) }

func (l *recordingLogger) WithContext(context.Context) glog.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) glog.Logger {
	return &recordingLogger{entries: l.entries, fields: fields}
}

func TestOnResolveLogsTraceFields(t *testing.T) {
	lgr, entries := newRecordingLogger()
	hook := New(lgr)

	hook.OnResolve(context.Background(), gate.ResolveEvent{
		Record: gate.NewRecord(gate.Entry{Key: "admin", State: gate.StateGranted}),
		Trace:  gate.ResolveTrace{Stage: gate.StageSucceeded, Source: gate.ResolveSourceResponse},
	})

	require.Len(t, *entries, 1)
	entry := (*entries)[0]
	require.Equal(t, "debug", entry.level)
	require.Equal(t, DefaultResolveMessage, entry.message)
	require.Equal(t, gate.StageSucceeded, entry.fields["permission_stage"])
	require.Equal(t, gate.ResolveSourceResponse, entry.fields["permission_source"])
	require.NotContains(t, entry.fields, "permission_error")
}

func TestOnResolveFailureUsesFailureLevel(t *testing.T) {
	lgr, entries := newRecordingLogger()
	hook := New(lgr, WithFailureLevel("ERROR"))

	hook.OnResolve(context.Background(), gate.ResolveEvent{
		Error: errors.New("permission transport failed"),
		Trace: gate.ResolveTrace{
			Stage:     gate.StageFailed,
			Source:    gate.ResolveSourceRecovered,
			ErrorKind: "DecodeError",
			Missing:   []string{"admin", "editor"},
		},
	})

	require.Len(t, *entries, 1)
	entry := (*entries)[0]
	require.Equal(t, "error", entry.level)
	require.Equal(t, "DecodeError", entry.fields["permission_error_kind"])
	require.Equal(t, "admin,editor", entry.fields["permission_missing"])
}

func TestOnUpdateLogsScopeAndFailures(t *testing.T) {
	lgr, entries := newRecordingLogger()
	hook := New(lgr, WithUpdateMessage("fetch"))

	scopeSet := gate.ScopeSet{TenantID: "acme", UserID: "u1"}
	hook.OnUpdate(context.Background(), activity.UpdateEvent{
		FetchID: "f1",
		Action:  activity.ActionFetchStarted,
		Stage:   gate.StagePending,
		Scope:   scopeSet,
	})
	hook.OnUpdate(context.Background(), activity.UpdateEvent{
		FetchID:   "f1",
		Action:    activity.ActionFetchFailed,
		Stage:     gate.StageFailed,
		ErrorKind: "TransportError",
		Scope:     scopeSet,
	})

	require.Len(t, *entries, 2)
	require.Equal(t, "debug", (*entries)[0].level)
	require.Equal(t, "fetch", (*entries)[0].message)
	require.Equal(t, "acme", (*entries)[0].fields["tenant_id"])
	require.NotContains(t, (*entries)[0].fields, "org_id")
	require.Equal(t, "warn", (*entries)[1].level)
	require.Equal(t, "TransportError", (*entries)[1].fields["fetch_error_kind"])
}

func TestNilLoggerIsNoop(t *testing.T) {
	hook := New(nil)
	hook.OnResolve(context.Background(), gate.ResolveEvent{})
	hook.OnUpdate(context.Background(), activity.UpdateEvent{})
}
