package groundcontrol

import (
	"context"
	"reflect"

	"github.com/google/uuid"
)

// Receiver is anything that can be handed a published topic and its payload.
type Receiver interface {
	Receive(ctx context.Context, topic string, payload any)
}

// ReceiverFunc adapts a plain function to a Receiver.
type ReceiverFunc func(ctx context.Context, topic string, payload any)

// Receive calls f(ctx, topic, payload).
func (f ReceiverFunc) Receive(ctx context.Context, topic string, payload any) {
	f(ctx, topic, payload)
}

type noopReceiver struct{}

func (noopReceiver) Receive(context.Context, string, any) {}

// Subscriber is the handle a hub registers. Its identity, not its receiver,
// decides uniqueness: the same *Subscriber subscribed under overlapping
// patterns gets one delivery per dispatch.
type Subscriber struct {
	id       string
	hub      *Hub
	receiver Receiver
}

// NewSubscriber wraps r in a handle bound to this hub. A nil receiver gets a
// no-op one. A handle that already belongs to this hub is returned unchanged;
// a handle of another hub is wrapped so that Ignore talks to this hub.
func (h *Hub) NewSubscriber(r Receiver) *Subscriber {
	if s, ok := r.(*Subscriber); ok && s != nil && s.hub == h {
		return s
	}
	if isNilReceiver(r) {
		r = noopReceiver{}
	}
	return &Subscriber{
		id:       uuid.Must(uuid.NewV7()).String(),
		hub:      h,
		receiver: r,
	}
}

// ID returns the unique id of the subscriber.
func (s *Subscriber) ID() string {
	return s.id
}

// Receive hands topic and payload to the wrapped receiver.
func (s *Subscriber) Receive(ctx context.Context, topic string, payload any) {
	s.receiver.Receive(ctx, topic, payload)
}

// Ignore unsubscribes from patterns on the hub that owns this subscriber.
func (s *Subscriber) Ignore(patterns ...string) error {
	return s.hub.Unsubscribe(s, patterns...)
}

func isNilReceiver(r Receiver) bool {
	switch v := r.(type) {
	case nil:
		return true
	case ReceiverFunc:
		return v == nil
	case *Subscriber:
		return v == nil
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
