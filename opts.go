package groundcontrol

import (
	"fmt"
	"log/slog"

	"github.com/casualjim/groundcontrol/pattern"
	"github.com/fogfish/opts"
)

// Option configures a Hub.
type Option = opts.Option[Hub]

// PanicHandler is told about a subscriber that panicked while receiving topic.
type PanicHandler func(topic string, sub *Subscriber, recovered any)

var (
	// WithLogger sets the logger the hub reports to. Defaults to slog.Default().
	WithLogger = opts.ForName[Hub, *slog.Logger]("logger")

	// WithDiscipline selects the pattern syntax the hub accepts. Defaults to
	// pattern.Strict.
	WithDiscipline = opts.ForName[Hub, pattern.Discipline]("discipline")

	// WithPanicHandler registers a callback for subscribers that panic during
	// delivery. Delivery to the other subscribers continues either way.
	WithPanicHandler = opts.ForName[Hub, PanicHandler]("onPanic")
)

// WithConcurrency lets up to n deliveries of the same dispatch run at once.
// Rounds still start strictly one after the other. Defaults to 1.
func WithConcurrency(n int) Option {
	return opts.Type[Hub](func(h *Hub) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidArgument, n)
		}
		h.concurrency = n
		return nil
	})
}
