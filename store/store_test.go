package store

import "testing"

func TestStoreNotifiesSubscribersInOrder(t *testing.T) {
	s := New(0)
	var seen []string
	s.Subscribe(func(v int) { seen = append(seen, "first") })
	s.Subscribe(func(v int) { seen = append(seen, "second") })

	if !s.Set(1) {
		t.Fatalf("expected set to be accepted")
	}
	if s.Get() != 1 {
		t.Fatalf("expected value 1, got %d", s.Get())
	}
	if len(seen) != 2 || seen[0] != "first" || seen[1] != "second" {
		t.Fatalf("unexpected notification order %v", seen)
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	s := New("a")
	calls := 0
	unsubscribe := s.Subscribe(func(string) { calls++ })
	s.Set("b")
	unsubscribe()
	s.Set("c")
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestStoreUpdate(t *testing.T) {
	s := New(1)
	s.Update(func(v int) int { return v + 41 })
	if s.Get() != 42 {
		t.Fatalf("expected 42, got %d", s.Get())
	}
}

func TestStoreCloseRejectsPublications(t *testing.T) {
	s := New(1)
	calls := 0
	s.Subscribe(func(int) { calls++ })
	s.Close()

	if s.Set(2) {
		t.Fatalf("expected set after close to be rejected")
	}
	if s.Get() != 1 {
		t.Fatalf("expected value to stay 1, got %d", s.Get())
	}
	if calls != 0 {
		t.Fatalf("expected no notifications after close")
	}
	if !s.Closed() {
		t.Fatalf("expected closed store")
	}
	s.Subscribe(func(int) { calls++ })()
}
