package gate

import (
	"sort"
	"strings"
)

// Entry is a single key/state pair of a Record.
type Entry struct {
	Key   string
	State State
}

// Record maps permission keys to states. Records keep the order in which
// keys were declared and are never mutated after construction; every
// transformation returns a new Record.
type Record struct {
	keys   []string
	states map[string]State
}

// NewRecord builds a Record from ordered entries. Later duplicates replace
// the state of the first occurrence without changing its position.
func NewRecord(entries ...Entry) Record {
	rec := Record{
		keys:   make([]string, 0, len(entries)),
		states: make(map[string]State, len(entries)),
	}
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			continue
		}
		if _, ok := rec.states[key]; !ok {
			rec.keys = append(rec.keys, key)
		}
		rec.states[key] = entry.State
	}
	return rec
}

// Uniform builds a Record assigning the same state to every key.
func Uniform(keys []string, state State) Record {
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, State: state})
	}
	return NewRecord(entries...)
}

// FromBools maps every key to Granted or Denied using values. Keys missing
// from values are Denied.
func FromBools(keys []string, values map[string]bool) Record {
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, State: FromBool(values[key])})
	}
	return NewRecord(entries...)
}

// FromMap builds a Record from an unordered map, ordering keys lexically.
func FromMap(values map[string]State) Record {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, State: values[key]})
	}
	return NewRecord(entries...)
}

// Len returns the number of entries.
func (r Record) Len() int {
	return len(r.keys)
}

// Keys returns the keys in declaration order.
func (r Record) Keys() []string {
	if len(r.keys) == 0 {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the state for key.
func (r Record) Get(key string) (State, bool) {
	state, ok := r.states[key]
	return state, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.states[key]
	return ok
}

// First returns the first declared entry.
func (r Record) First() (Entry, bool) {
	if len(r.keys) == 0 {
		return Entry{}, false
	}
	key := r.keys[0]
	return Entry{Key: key, State: r.states[key]}, true
}

// Entries returns every entry in declaration order.
func (r Record) Entries() []Entry {
	out := make([]Entry, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, Entry{Key: key, State: r.states[key]})
	}
	return out
}

// Map returns an unordered copy of the record.
func (r Record) Map() map[string]State {
	out := make(map[string]State, len(r.keys))
	for key, state := range r.states {
		out[key] = state
	}
	return out
}

// Overlay returns a new Record starting from r with every entry of other
// applied on top. Keys only present in other are appended in other's order.
func (r Record) Overlay(other Record) Record {
	entries := r.Entries()
	entries = append(entries, other.Entries()...)
	return NewRecord(entries...)
}

// Filter returns a new Record holding only the entries whose key is in keys.
// Order follows r.
func (r Record) Filter(keys []string) Record {
	if len(keys) == 0 || len(r.keys) == 0 {
		return NewRecord()
	}
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}
	entries := make([]Entry, 0, len(keys))
	for _, key := range r.keys {
		if _, ok := wanted[key]; ok {
			entries = append(entries, Entry{Key: key, State: r.states[key]})
		}
	}
	return NewRecord(entries...)
}

// Any reports whether any entry holds state.
func (r Record) Any(state State) bool {
	for _, key := range r.keys {
		if r.states[key] == state {
			return true
		}
	}
	return false
}

// Equal reports whether both records hold the same keys, order and states.
func (r Record) Equal(other Record) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, key := range r.keys {
		if other.keys[i] != key {
			return false
		}
		if r.states[key] != other.states[key] {
			return false
		}
	}
	return true
}

// SameKeys reports whether both records hold exactly the same key set,
// ignoring order and state.
func (r Record) SameKeys(other Record) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for _, key := range r.keys {
		if !other.Has(key) {
			return false
		}
	}
	return true
}

// String renders the record as `{a:Granted b:Denied}`.
func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte(':')
		b.WriteString(string(r.states[key]))
	}
	b.WriteByte('}')
	return b.String()
}

// Reader exposes the currently published record.
type Reader interface {
	Permission() Record
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func() Record

// Permission implements Reader.
func (fn ReaderFunc) Permission() Record {
	if fn == nil {
		return NewRecord()
	}
	return fn()
}

// Static returns a Reader that always publishes rec.
func Static(rec Record) Reader {
	return ReaderFunc(func() Record { return rec })
}
