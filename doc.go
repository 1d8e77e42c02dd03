/*
Package groundcontrol provides an in-process publish/subscribe hub.

Components register interest in named topics, optionally with wildcards, and
the hub routes every dispatched message to each matching subscriber exactly
once per dispatch.

# Topics and patterns

Subscriptions use patterns, publications use concrete topics. With the default
strict discipline a pattern has the form "<module>:<signal>" and each segment
may end in a single '*':

	menu:open    - only menu:open
	menu:*       - every signal of the menu module
	*:click      - the click signal of every module
	*:*          - everything

A hub created WithDiscipline(pattern.Glob) accepts shell globs ('*', '?',
'[abc]', '[!abc]') with no structural rule instead. A topic passed to Dispatch
may never contain a wildcard.

# Basic Usage

	hub, err := groundcontrol.New()
	if err != nil {
	    return err
	}
	defer hub.Close(ctx)

	sub, err := hub.SubscribeFunc(func(ctx context.Context, topic string, payload any) {
	    slog.Info("received", "topic", topic, "payload", payload)
	}, "menu:*")
	if err != nil {
	    return err
	}

	// the same handle keeps one identity across patterns
	if _, err := hub.Subscribe(sub, "modal:open"); err != nil {
	    return err
	}

	if err := hub.Dispatch("menu:open", map[string]any{"item": "file"}); err != nil {
	    return err
	}

	// later
	_ = sub.Ignore("menu:*")

# Delivery

Dispatch does not call receivers inline. It takes a snapshot of the matching
subscribers, de-duplicated by handle, and schedules one delivery round on the
hub's worker. Rounds run in dispatch order and a round only starts after the
previous one finished, so a receiver that dispatches from inside its callback
queues a new round behind the current one. Flush waits for all scheduled
rounds; Close drains them and stops the worker.

Once a round is scheduled its deliveries happen, even if a subscriber
unsubscribes before its turn. A panicking receiver is recovered and logged and
does not affect the other deliveries.

# Last value caching

The most recent delivery that matched a registered pattern is cached on that
pattern. A subscriber that joins an existing pattern receives the cached
delivery once, scheduled before any later dispatch. The cache disappears with
the pattern when its last subscriber leaves.

# Thread Safety

Hub and Subscriber are safe for concurrent use. Receivers may run
concurrently with each other when the hub is created WithConcurrency(n) with
n > 1; they are otherwise called one at a time.
*/
package groundcontrol
