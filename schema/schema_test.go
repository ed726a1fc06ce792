package schema

import (
	"errors"
	"testing"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
)

func TestNewRejectsInvalidKeys(t *testing.T) {
	cases := []struct {
		name string
		keys []string
		want error
	}{
		{name: "empty key", keys: []string{"a", " "}, want: ferrors.ErrInvalidKey},
		{name: "duplicate", keys: []string{"a", " a"}, want: ferrors.ErrDuplicateKey},
		{name: "no keys", keys: nil, want: ferrors.ErrSchemaInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.keys)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMapToCoversEveryKey(t *testing.T) {
	s := Must([]string{"test", "notpresent", "other"})
	for _, state := range gate.States() {
		rec := MapTo(s, state)
		if !s.Conforms(rec) {
			t.Fatalf("expected %s to conform", rec)
		}
		for _, entry := range rec.Entries() {
			if entry.State != state {
				t.Fatalf("expected %s, got %s for %s", state, entry.State, entry.Key)
			}
		}
		if first, _ := rec.First(); first.Key != "test" {
			t.Fatalf("expected declaration order, got %v", rec.Keys())
		}
	}
}

type adminPermissions struct {
	CanEdit   bool `json:"can_edit"`
	CanDelete bool
	Internal  bool `json:"-"`
	hidden    bool
}

func TestOfUsesBoolFields(t *testing.T) {
	s, err := Of[adminPermissions]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "can_edit" || keys[1] != "CanDelete" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if s.Name() != "adminPermissions" {
		t.Fatalf("unexpected name %q", s.Name())
	}
	_ = adminPermissions{hidden: true}
}

func TestOfRejectsNonBoolFields(t *testing.T) {
	type bad struct {
		Count int
	}
	_, err := Of[bad]()
	if !errors.Is(err, ferrors.ErrSchemaInvalid) {
		t.Fatalf("expected schema invalid, got %v", err)
	}
}

func TestRestrictDropsUndeclaredKeys(t *testing.T) {
	s := Must([]string{"a", "b"})
	rec := gate.FromMap(map[string]gate.State{"a": gate.StateGranted, "b": gate.StateDenied, "x": gate.StateGranted})
	got := s.Restrict(rec)
	if got.Has("x") || !s.Conforms(got) {
		t.Fatalf("unexpected restricted record %s", got)
	}
}
