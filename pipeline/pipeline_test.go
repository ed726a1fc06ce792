package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/schema"
	"github.com/goliatone/go-permissiongate/scope"
	"github.com/goliatone/go-permissiongate/transport"
)

var testSchema = schema.Must([]string{"test", "notpresent"})

func denied() gate.Record {
	return testSchema.MapTo(gate.StateDenied)
}

func TestNewRequiresFetcher(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ferrors.ErrFetcherRequired) {
		t.Fatalf("expected fetcher required, got %v", err)
	}
}

func TestRunSucceeded(t *testing.T) {
	p, _ := New(transport.Static(map[string]any{"test": true, "notpresent": false}))
	out := p.Run(context.Background(), testSchema, denied())

	rec, ok := out.Record()
	if !ok {
		t.Fatalf("expected succeeded outcome, got %s", out.Stage())
	}
	want := gate.NewRecord(
		gate.Entry{Key: "test", State: gate.StateGranted},
		gate.Entry{Key: "notpresent", State: gate.StateDenied},
	)
	if !rec.Equal(want) {
		t.Fatalf("expected %s, got %s", want, rec)
	}
}

func TestRunDecodeFailureMergesOverDenied(t *testing.T) {
	p, _ := New(transport.Static(map[string]any{"test": true}))
	out := p.Run(context.Background(), testSchema, denied())

	if out.Stage() != gate.StageFailed {
		t.Fatalf("expected failed outcome, got %s", out.Stage())
	}
	decodeErr, ok := out.Err().(*failure.DecodeError)
	if !ok {
		t.Fatalf("expected decode error, got %T", out.Err())
	}
	if len(decodeErr.MissingKeys) != 1 || decodeErr.MissingKeys[0] != "notpresent" {
		t.Fatalf("unexpected missing keys %v", decodeErr.MissingKeys)
	}
	if state, _ := decodeErr.Merged.Get("test"); state != gate.StateGranted {
		t.Fatalf("expected test granted, got %s", state)
	}
	if state, _ := decodeErr.Merged.Get("notpresent"); state != gate.StateDenied {
		t.Fatalf("expected notpresent denied, got %s", state)
	}
}

func TestRunTransportFailure(t *testing.T) {
	p, _ := New(transport.Failing(errors.New("connection refused")))
	out := p.Run(context.Background(), testSchema, denied())

	transportErr, ok := out.Err().(*failure.TransportError)
	if !ok {
		t.Fatalf("expected transport error, got %T", out.Err())
	}
	if transportErr.Message != "connection refused" {
		t.Fatalf("unexpected message %q", transportErr.Message)
	}
}

func TestRunPassesResolvedScope(t *testing.T) {
	var got gate.ScopeSet
	fetcher := transport.FetcherFunc(func(_ context.Context, set gate.ScopeSet) (any, error) {
		got = set
		return map[string]any{"test": true, "notpresent": true}, nil
	})
	p, _ := New(fetcher)
	ctx := scope.WithTenantID(context.Background(), "acme")
	p.Run(ctx, testSchema, denied())
	if got.TenantID != "acme" {
		t.Fatalf("expected tenant scope, got %+v", got)
	}
}

func TestRunScopeFailureIsTransportError(t *testing.T) {
	p, _ := New(transport.Static(map[string]any{}), WithScopeResolver(gate.ScopeResolverFunc(
		func(context.Context) (gate.ScopeSet, error) { return gate.ScopeSet{}, errors.New("no actor") },
	)))
	out := p.Run(context.Background(), testSchema, denied())
	if _, ok := out.Err().(*failure.TransportError); !ok {
		t.Fatalf("expected transport error, got %T", out.Err())
	}
}

func TestRunCustomValidatorPlainError(t *testing.T) {
	v := schema.ValidatorFunc(func(*schema.Schema, any) (map[string]bool, error) {
		return nil, errors.New("rejected")
	})
	p, _ := New(transport.Static("garbage=1"), WithValidator(v))
	out := p.Run(context.Background(), testSchema, denied())

	decodeErr, ok := out.Err().(*failure.DecodeError)
	if !ok {
		t.Fatalf("expected decode error, got %T", out.Err())
	}
	if !decodeErr.Merged.Equal(denied()) {
		t.Fatalf("expected denied baseline, got %s", decodeErr.Merged)
	}
	if len(decodeErr.Complaints) != 1 || decodeErr.Complaints[0].Message != "rejected" {
		t.Fatalf("unexpected complaints %+v", decodeErr.Complaints)
	}
}

func TestRunScopeSkipsResolver(t *testing.T) {
	resolves := 0
	var fetched gate.ScopeSet
	p, _ := New(
		transport.FetcherFunc(func(_ context.Context, set gate.ScopeSet) (any, error) {
			fetched = set
			return map[string]any{"test": true, "notpresent": false}, nil
		}),
		WithScopeResolver(gate.ScopeResolverFunc(func(context.Context) (gate.ScopeSet, error) {
			resolves++
			return gate.ScopeSet{UserID: "other"}, nil
		})),
	)

	out := p.RunScope(context.Background(), gate.ScopeSet{TenantID: "acme"}, testSchema, denied())
	if out.Stage() != gate.StageSucceeded {
		t.Fatalf("expected success, got %s", out.Stage())
	}
	if resolves != 0 {
		t.Fatalf("expected no scope resolution, got %d", resolves)
	}
	if fetched.TenantID != "acme" || fetched.UserID != "" {
		t.Fatalf("expected caller scope, got %+v", fetched)
	}
}
