package slogx

import (
	"log/slog"
)

const (
	// KeyLoggerName is the key for the logger name attribute.
	KeyLoggerName = "logger"
	// KeyTopic is the key for the concrete topic of a dispatch.
	KeyTopic = "topic"
	// KeyPatterns is the key for the patterns of a subscribe or unsubscribe call.
	KeyPatterns = "patterns"
	// KeySubscriber is the key for a subscriber id.
	KeySubscriber = "subscriber"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
//
// Parameters:
//   - err: The error to be converted into a slog.Attr.
//
// Returns:
//   - slog.Attr: An attribute with the key "error" and the error's message as the value.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Panic returns an attribute group describing a recovered panic value and the
// stack it was recovered on.
func Panic(recovered any, stack []byte) slog.Attr {
	return slog.Group("panic",
		slog.Any("value", recovered),
		slog.String("stack", string(stack)),
	)
}

// LoggerName creates a slog.Attr with the provided logger name.
// The attribute key is defined by KeyLoggerName.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// Topic creates the attribute for a concrete topic.
func Topic(topic string) slog.Attr {
	return slog.String(KeyTopic, topic)
}

// Patterns creates the attribute for the patterns of a subscription call.
func Patterns(patterns []string) slog.Attr {
	return slog.Any(KeyPatterns, patterns)
}

// Subscriber creates the attribute for a subscriber id.
func Subscriber(id string) slog.Attr {
	return slog.String(KeySubscriber, id)
}
