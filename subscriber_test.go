package groundcontrol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscriber(t *testing.T) {
	hub := newHub(t)

	t.Run("nil receiver is a no-op", func(t *testing.T) {
		sub := hub.NewSubscriber(nil)
		require.NotNil(t, sub)
		assert.NotPanics(t, func() { sub.Receive(context.Background(), "menu:open", nil) })
	})

	t.Run("typed nil receiver is a no-op", func(t *testing.T) {
		sub := hub.NewSubscriber((*recorder)(nil))
		assert.NotPanics(t, func() { sub.Receive(context.Background(), "menu:open", nil) })
	})

	t.Run("wraps a receiver", func(t *testing.T) {
		rec := &recorder{}
		sub := hub.NewSubscriber(rec)
		sub.Receive(context.Background(), "menu:open", 42)
		assert.Equal(t, []received{{topic: "menu:open", payload: 42}}, rec.received())
	})

	t.Run("returns its own handles unchanged", func(t *testing.T) {
		sub := hub.NewSubscriber(&recorder{})
		assert.Same(t, sub, hub.NewSubscriber(sub))
	})

	t.Run("wraps handles of another hub", func(t *testing.T) {
		other := newHub(t)
		foreign := other.NewSubscriber(&recorder{})
		sub := hub.NewSubscriber(foreign)
		assert.NotSame(t, foreign, sub)
		assert.NotEqual(t, foreign.ID(), sub.ID())
	})

	t.Run("ids are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			id := hub.NewSubscriber(nil).ID()
			_, dup := seen[id]
			require.False(t, dup, id)
			seen[id] = struct{}{}
		}
	})
}

func TestSubscriber_Ignore(t *testing.T) {
	hub := newHub(t)
	rec := &recorder{}
	sub := mustSubscribe(t, hub, rec, "menu:open", "menu:close")

	require.NoError(t, sub.Ignore("menu:open"))
	mustDispatch(t, hub, "menu:open", nil)
	mustDispatch(t, hub, "menu:close", nil)
	flush(t, hub)

	assert.Equal(t, []string{"menu:close"}, rec.topics())
	assert.ErrorIs(t, sub.Ignore(), ErrInvalidArgument)
}

func TestSubscriber_IgnoreUsesOwningHub(t *testing.T) {
	hub1, hub2 := newHub(t), newHub(t)
	rec := &recorder{}
	sub1 := mustSubscribe(t, hub1, rec, "menu:open")
	sub2 := mustSubscribe(t, hub2, sub1, "menu:open")
	require.NotSame(t, sub1, sub2)

	require.NoError(t, sub2.Ignore("menu:open"))
	assert.Len(t, hub1.Snapshot(), 1)
	assert.Empty(t, hub2.Snapshot())

	mustDispatch(t, hub1, "menu:open", nil)
	mustDispatch(t, hub2, "menu:open", nil)
	flush(t, hub1)
	flush(t, hub2)
	assert.Len(t, rec.received(), 1)
}

func TestSubscribeFunc(t *testing.T) {
	hub := newHub(t)
	var got []string
	_, err := hub.SubscribeFunc(func(_ context.Context, topic string, _ any) {
		got = append(got, topic)
	}, "menu:*")
	require.NoError(t, err)

	mustDispatch(t, hub, "menu:open", nil)
	flush(t, hub)
	assert.Equal(t, []string{"menu:open"}, got)

	_, err = hub.SubscribeFunc(nil, "menu:*")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
