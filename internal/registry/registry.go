// Package registry keeps the pattern → subscription entry table of a hub.
//
// Entries are iterated in the order their patterns were first registered, so
// matching and delivery order are deterministic. A Registry is not safe for
// concurrent use; the owning hub serializes access.
package registry

import (
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is the subscription state for one pattern.
type Entry[S comparable, C any] struct {
	Pattern     string
	Subscribers []S

	cached    C
	hasCached bool
}

// Cached returns the last value stored for this pattern, if any.
func (e *Entry[S, C]) Cached() (C, bool) {
	return e.cached, e.hasCached
}

// SetCached replaces the cached value.
func (e *Entry[S, C]) SetCached(value C) {
	e.cached = value
	e.hasCached = true
}

// Has reports whether sub is subscribed to this entry.
func (e *Entry[S, C]) Has(sub S) bool {
	return slices.Contains(e.Subscribers, sub)
}

// Registry maps patterns to their entries. S is the subscriber handle, compared
// by ==, and C the cached value type.
type Registry[S comparable, C any] struct {
	entries *orderedmap.OrderedMap[string, *Entry[S, C]]
}

// New creates an empty registry.
func New[S comparable, C any]() *Registry[S, C] {
	return &Registry[S, C]{
		entries: orderedmap.New[string, *Entry[S, C]](),
	}
}

// Get returns the entry for pattern.
func (r *Registry[S, C]) Get(pattern string) (*Entry[S, C], bool) {
	return r.entries.Get(pattern)
}

// Add subscribes sub to pattern, creating the entry when the pattern is new.
// The boolean is false when sub was already subscribed.
func (r *Registry[S, C]) Add(pattern string, sub S) (*Entry[S, C], bool) {
	entry, ok := r.entries.Get(pattern)
	if !ok {
		entry = &Entry[S, C]{Pattern: pattern}
		r.entries.Set(pattern, entry)
	}
	if entry.Has(sub) {
		return entry, false
	}
	entry.Subscribers = append(entry.Subscribers, sub)
	return entry, true
}

// Remove unsubscribes sub from pattern. It reports whether sub was removed and
// whether the entry was dropped because no subscribers were left.
func (r *Registry[S, C]) Remove(pattern string, sub S) (removed, dropped bool) {
	entry, ok := r.entries.Get(pattern)
	if !ok {
		return false, false
	}
	idx := slices.Index(entry.Subscribers, sub)
	if idx < 0 {
		return false, false
	}
	entry.Subscribers = slices.Delete(entry.Subscribers, idx, idx+1)
	if len(entry.Subscribers) == 0 {
		r.entries.Delete(pattern)
		return true, true
	}
	return true, false
}

// Match returns the entries whose pattern satisfies pred, in registration order.
func (r *Registry[S, C]) Match(pred func(pattern string) bool) []*Entry[S, C] {
	var result []*Entry[S, C]
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pred(pair.Key) {
			result = append(result, pair.Value)
		}
	}
	return result
}

// Entries returns every entry in registration order.
func (r *Registry[S, C]) Entries() []*Entry[S, C] {
	return r.Match(func(string) bool { return true })
}

// Len returns the number of registered patterns.
func (r *Registry[S, C]) Len() int {
	return r.entries.Len()
}
