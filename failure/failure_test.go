package failure

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/schema"
)

func missing(keys ...string) []schema.Complaint {
	out := make([]schema.Complaint, 0, len(keys))
	for _, key := range keys {
		out = append(out, schema.Complaint{Path: []string{"", key}, Message: "missing boolean"})
	}
	return out
}

func TestBuildDecodeErrorMergesPresentKeys(t *testing.T) {
	denied := gate.Uniform([]string{"a", "b", "c"}, gate.StateDenied)
	err := BuildDecodeError(missing("c"), map[string]any{"a": true, "b": true}, denied)

	want := gate.NewRecord(
		gate.Entry{Key: "a", State: gate.StateGranted},
		gate.Entry{Key: "b", State: gate.StateGranted},
		gate.Entry{Key: "c", State: gate.StateDenied},
	)
	if !err.Merged.Equal(want) {
		t.Fatalf("expected %s, got %s", want, err.Merged)
	}
	if len(err.MissingKeys) != 1 || err.MissingKeys[0] != "c" {
		t.Fatalf("unexpected missing keys %v", err.MissingKeys)
	}
	if err.Response.Len() != 2 {
		t.Fatalf("unexpected response %s", err.Response)
	}
}

func TestBuildDecodeErrorUnparseableKeepsBaseline(t *testing.T) {
	denied := gate.Uniform([]string{"a", "b"}, gate.StateDenied)
	for _, raw := range []any{
		"garbage=1",
		map[string]any{"a": true, "b": "yes"},
		[]byte("not json"),
		42,
		nil,
	} {
		err := BuildDecodeError(missing("a"), raw, denied)
		if err.Response.Len() != 0 {
			t.Fatalf("raw %#v: expected empty response, got %s", raw, err.Response)
		}
		if !err.Merged.Equal(denied) {
			t.Fatalf("raw %#v: expected denied baseline, got %s", raw, err.Merged)
		}
	}
}

func TestBuildDecodeErrorReadsJSONBytes(t *testing.T) {
	denied := gate.Uniform([]string{"a"}, gate.StateDenied)
	err := BuildDecodeError(missing("b"), json.RawMessage(`{"a":true,"b":false}`), denied)
	if state, _ := err.Merged.Get("a"); state != gate.StateGranted {
		t.Fatalf("expected a granted, got %s", state)
	}
	if state, _ := err.Merged.Get("b"); state != gate.StateDenied {
		t.Fatalf("expected polluting key b retained as denied, got %s", state)
	}
}

func TestRecoverTransportYieldsDenied(t *testing.T) {
	denied := gate.Uniform([]string{"a"}, gate.StateDenied)
	err := BuildTransportError(errors.New("connection refused"))
	if !Recover(err, denied).Equal(denied) {
		t.Fatalf("expected denied baseline")
	}
	if err.Message != "connection refused" {
		t.Fatalf("unexpected message %q", err.Message)
	}
	if ferrors.TextCode(err) != ferrors.TextCodeTransportFailed {
		t.Fatalf("expected transport text code, got %q", ferrors.TextCode(err))
	}
}

func TestMatchDispatchesByVariant(t *testing.T) {
	var decode Error = BuildDecodeError(missing("x"), nil, gate.NewRecord())
	var transport Error = BuildTransportError(errors.New("boom"))

	label := func(err Error) string {
		return Match(err,
			func(e *DecodeError) string { return "decode:" + strings.Join(e.MissingKeys, ",") },
			func(e *TransportError) string { return "transport:" + e.Message },
		)
	}
	if got := label(decode); got != "decode:x" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := label(transport); got != "transport:boom" {
		t.Fatalf("unexpected label %q", got)
	}
	if decode.Kind() != KindDecode || transport.Kind() != KindTransport {
		t.Fatalf("unexpected kinds")
	}
}
