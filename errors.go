package groundcontrol

import (
	"errors"

	"github.com/casualjim/groundcontrol/pattern"
)

var (
	// ErrInvalidArgument is returned for a missing subscriber, an empty pattern
	// list, an empty pattern or an empty topic.
	ErrInvalidArgument = errors.New("groundcontrol: invalid argument")

	// ErrInvalidPatternFormat is returned when a pattern breaks the
	// "<module>:<signal>" rule of the strict discipline.
	ErrInvalidPatternFormat = pattern.ErrInvalidFormat

	// ErrInvalidPublication is returned when a dispatched topic contains a
	// wildcard. Publications always target one concrete topic.
	ErrInvalidPublication = errors.New("groundcontrol: wildcards are not allowed in publications")

	// ErrHubClosed is returned by Subscribe and Dispatch after Close.
	ErrHubClosed = errors.New("groundcontrol: hub closed")
)
