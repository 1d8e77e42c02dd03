package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sub struct{ name string }

func patterns(entries []*Entry[*sub, string]) []string {
	var result []string
	for _, e := range entries {
		result = append(result, e.Pattern)
	}
	return result
}

func TestRegistry_Add(t *testing.T) {
	r := New[*sub, string]()
	a, b := &sub{"a"}, &sub{"b"}

	entry, added := r.Add("menu:open", a)
	require.True(t, added)
	assert.Equal(t, "menu:open", entry.Pattern)
	assert.Equal(t, []*sub{a}, entry.Subscribers)

	_, added = r.Add("menu:open", a)
	assert.False(t, added, "the same handle is only registered once")

	_, added = r.Add("menu:open", b)
	assert.True(t, added)

	entry, ok := r.Get("menu:open")
	require.True(t, ok)
	assert.Equal(t, []*sub{a, b}, entry.Subscribers)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_IdentityNotEquality(t *testing.T) {
	r := New[*sub, string]()
	_, added := r.Add("menu:open", &sub{"x"})
	require.True(t, added)
	_, added = r.Add("menu:open", &sub{"x"})
	assert.True(t, added)

	entry, _ := r.Get("menu:open")
	assert.Len(t, entry.Subscribers, 2)
}

func TestRegistry_Remove(t *testing.T) {
	r := New[*sub, string]()
	a, b := &sub{"a"}, &sub{"b"}
	r.Add("menu:open", a)
	r.Add("menu:open", b)
	entry, _ := r.Get("menu:open")
	entry.SetCached("last")

	removed, dropped := r.Remove("menu:open", a)
	assert.True(t, removed)
	assert.False(t, dropped)

	removed, dropped = r.Remove("menu:open", a)
	assert.False(t, removed, "absent subscribers are ignored")
	assert.False(t, dropped)

	removed, dropped = r.Remove("menu:open", b)
	assert.True(t, removed)
	assert.True(t, dropped)

	_, ok := r.Get("menu:open")
	assert.False(t, ok, "empty entries are deleted with their cache")

	removed, dropped = r.Remove("never:seen", a)
	assert.False(t, removed)
	assert.False(t, dropped)

	r.Add("menu:open", a)
	entry, _ = r.Get("menu:open")
	_, cached := entry.Cached()
	assert.False(t, cached, "a recreated entry starts without a cache")
}

func TestRegistry_MatchOrder(t *testing.T) {
	r := New[*sub, string]()
	a := &sub{"a"}
	for _, p := range []string{"modal:open", "menu:*", "*:open", "menu:open"} {
		r.Add(p, a)
	}

	got := r.Match(func(p string) bool { return p != "modal:open" })
	assert.Equal(t, []string{"menu:*", "*:open", "menu:open"}, patterns(got))
	assert.Equal(t, []string{"modal:open", "menu:*", "*:open", "menu:open"}, patterns(r.Entries()))

	r.Remove("menu:*", a)
	r.Add("menu:*", a)
	assert.Equal(t, []string{"modal:open", "*:open", "menu:open", "menu:*"}, patterns(r.Entries()))
	assert.Empty(t, r.Match(func(string) bool { return false }))
}

func TestEntry_Cached(t *testing.T) {
	r := New[*sub, int]()
	entry, _ := r.Add("a:b", &sub{"a"})

	v, ok := entry.Cached()
	assert.False(t, ok)
	assert.Zero(t, v)

	entry.SetCached(0)
	v, ok = entry.Cached()
	assert.True(t, ok, "a zero value is still a cached value")
	assert.Zero(t, v)

	entry.SetCached(42)
	v, _ = entry.Cached()
	assert.Equal(t, 42, v)
}
