package groundcontrol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/casualjim/groundcontrol/internal/registry"
	"github.com/casualjim/groundcontrol/internal/scheduler"
	"github.com/casualjim/groundcontrol/pattern"
	"github.com/casualjim/groundcontrol/pkg/slogx"
	"github.com/casualjim/groundcontrol/pkg/stdx"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
)

// Hub routes dispatched topics to the subscribers whose patterns match them.
// Every Hub owns an independent registry; there is no process-wide hub.
//
// A Hub is safe for concurrent use. Deliveries run on the hub's own worker, one
// round per Dispatch, so Close must be called to release it.
type Hub struct {
	logger      *slog.Logger
	discipline  pattern.Discipline
	concurrency int
	onPanic     PanicHandler

	matcher *pattern.Compiler
	queue   *scheduler.Queue

	mu       sync.Mutex
	registry *registry.Registry[*Subscriber, *Delivery]
	closed   bool
}

// New creates a hub and starts its delivery worker.
func New(options ...opts.Option[Hub]) (*Hub, error) {
	h := &Hub{
		logger:      slog.Default(),
		discipline:  pattern.Strict,
		concurrency: 1,
	}
	if err := opts.Apply(h, options); err != nil {
		return nil, err
	}
	h.logger = h.logger.With(slogx.LoggerName("groundcontrol"))
	h.matcher = pattern.NewCompiler(h.discipline)
	h.registry = registry.New[*Subscriber, *Delivery]()

	q, err := scheduler.New(
		scheduler.WithConcurrency(h.concurrency),
		scheduler.WithLogger(h.logger),
	)
	if err != nil {
		return nil, err
	}
	h.queue = q
	return h, nil
}

// Discipline returns the pattern discipline the hub enforces.
func (h *Hub) Discipline() pattern.Discipline {
	return h.discipline
}

// Subscribe registers r under every pattern and returns the subscriber handle.
// Pass the returned handle to later calls to keep one identity across
// patterns. When a pattern already holds a cached delivery and r is new to
// it, that delivery is replayed to r ahead of any later dispatch.
//
// All patterns are validated before anything is registered, so a rejected
// call leaves the hub untouched.
//
// Parameters:
//   - r: The receiver to register. A *Subscriber of this hub is reused as-is,
//     anything else is wrapped in a new handle. A nil receiver is rejected.
//   - patterns: One or more patterns in the hub's discipline.
//
// Returns:
//   - *Subscriber: The handle registered under every pattern.
//   - error: ErrInvalidArgument for a nil receiver, no patterns or an empty
//     pattern, ErrInvalidPatternFormat for a malformed pattern and
//     ErrHubClosed after Close.
func (h *Hub) Subscribe(r Receiver, patterns ...string) (*Subscriber, error) {
	if isNilReceiver(r) {
		return nil, fmt.Errorf("%w: a subscriber is required", ErrInvalidArgument)
	}
	if err := h.validate(patterns); err != nil {
		return nil, err
	}
	sub := h.NewSubscriber(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	var replay []*Delivery
	for _, p := range patterns {
		entry, added := h.registry.Add(p, sub)
		if !added {
			continue
		}
		if cached, ok := entry.Cached(); ok {
			replay = append(replay, cached)
		}
	}

	replay = stdx.Unique(replay)
	tasks := make([]scheduler.Task, 0, len(replay))
	for _, d := range replay {
		tasks = append(tasks, h.deliver(sub, d))
	}
	if _, err := h.queue.Enqueue(tasks...); err != nil {
		return nil, schedulingError("replaying cached deliveries", err)
	}

	h.logger.Debug("subscribed",
		slogx.Subscriber(sub.id),
		slogx.Patterns(patterns),
		slog.Int("replayed", len(replay)),
	)
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (h *Hub) SubscribeFunc(fn func(ctx context.Context, topic string, payload any), patterns ...string) (*Subscriber, error) {
	return h.Subscribe(ReceiverFunc(fn), patterns...)
}

// Unsubscribe removes sub from every registered pattern covered by one of
// patterns. Request patterns are matched against the registered pattern
// strings, so "menu:*" drops sub from "menu:open" and "menu:*", and "*:*"
// drops it everywhere. Not being subscribed is not an error.
func (h *Hub) Unsubscribe(sub *Subscriber, patterns ...string) error {
	if sub == nil {
		return fmt.Errorf("%w: a subscriber is required", ErrInvalidArgument)
	}
	if err := h.validate(patterns); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var removed, dropped int
	for _, p := range patterns {
		entries := h.registry.Match(func(key string) bool {
			return h.matcher.Covers(p, key)
		})
		for _, entry := range entries {
			ok, gone := h.registry.Remove(entry.Pattern, sub)
			if ok {
				removed++
			}
			if gone {
				dropped++
			}
		}
	}

	h.logger.Debug("unsubscribed",
		slogx.Subscriber(sub.id),
		slogx.Patterns(patterns),
		slog.Int("removed", removed),
		slog.Int("dropped", dropped),
	)
	return nil
}

// Dispatch publishes payload on topic. The topic must be concrete.
//
// Every subscriber of a matching pattern gets exactly one delivery, even when
// several of its patterns match. The delivery is cached on each matching
// pattern. Deliveries are scheduled, not run inline: they start after the
// deliveries of every earlier Dispatch, including one made from inside a
// receiver, have started.
func (h *Hub) Dispatch(topic string, payload any) error {
	if topic == "" {
		return fmt.Errorf("%w: a topic is required", ErrInvalidArgument)
	}
	if !pattern.IsConcrete(h.discipline, topic) {
		return fmt.Errorf("%w: %q", ErrInvalidPublication, topic)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	entries := h.registry.Match(func(key string) bool {
		return h.matcher.Matches(topic, key)
	})
	if len(entries) == 0 {
		h.logger.Debug("dispatched without subscribers", slogx.Topic(topic))
		return nil
	}

	d := &Delivery{
		Topic:     topic,
		Payload:   payload,
		Timestamp: strfmt.DateTime(time.Now()),
	}
	var subs []*Subscriber
	for _, entry := range entries {
		entry.SetCached(d)
		subs = append(subs, entry.Subscribers...)
	}
	subs = stdx.Unique(subs)

	tasks := make([]scheduler.Task, 0, len(subs))
	for _, sub := range subs {
		tasks = append(tasks, h.deliver(sub, d))
	}
	round, err := h.queue.Enqueue(tasks...)
	if err != nil {
		return schedulingError(fmt.Sprintf("scheduling %q", topic), err)
	}

	h.logger.Debug("dispatched",
		slogx.Topic(topic),
		slog.Int("patterns", len(entries)),
		slog.Int("subscribers", len(subs)),
		slog.Uint64("round", round),
	)
	return nil
}

// Flush waits until every scheduled delivery, and every delivery scheduled
// by those in turn, has run. It must not be called from inside a Receiver.
func (h *Hub) Flush(ctx context.Context) error {
	return h.queue.Flush(ctx)
}

// Pending returns the number of scheduled rounds, dispatches and cache
// replays, that have not finished yet.
func (h *Hub) Pending() int {
	return h.queue.Pending()
}

// Close stops accepting subscriptions and dispatches, runs what is already
// scheduled and stops the delivery worker.
//
// Like Flush it must not be called from inside a Receiver: the worker cannot
// stop while it runs the calling receiver, so such a call only returns when
// ctx is done. The hub is closed either way.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return h.queue.Close(ctx)
}

// Snapshot lists the registered patterns in registration order.
func (h *Hub) Snapshot() []Binding {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.registry.Entries()
	bindings := make([]Binding, 0, len(entries))
	for _, entry := range entries {
		b := Binding{
			Pattern:     entry.Pattern,
			Subscribers: make([]string, 0, len(entry.Subscribers)),
		}
		for _, sub := range entry.Subscribers {
			b.Subscribers = append(b.Subscribers, sub.id)
		}
		if cached, ok := entry.Cached(); ok {
			c := *cached
			b.Cached = &c
		}
		bindings = append(bindings, b)
	}
	return bindings
}

func (h *Hub) validate(patterns []string) error {
	if len(patterns) == 0 {
		return fmt.Errorf("%w: at least one pattern is required", ErrInvalidArgument)
	}
	for _, p := range patterns {
		if p == "" {
			return fmt.Errorf("%w: empty pattern", ErrInvalidArgument)
		}
		if err := pattern.Validate(h.discipline, p); err != nil {
			return err
		}
	}
	return nil
}

func schedulingError(what string, err error) error {
	if errors.Is(err, scheduler.ErrClosed) {
		return ErrHubClosed
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (h *Hub) deliver(sub *Subscriber, d *Delivery) scheduler.Task {
	return func(ctx context.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			h.logger.Error("subscriber panicked",
				slogx.Topic(d.Topic),
				slogx.Subscriber(sub.id),
				slogx.Panic(r, debug.Stack()),
			)
			if h.onPanic != nil {
				h.onPanic(d.Topic, sub, r)
			}
		}()
		sub.Receive(ctx, d.Topic, d.Payload)
	}
}
