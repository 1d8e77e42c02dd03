package slogx

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("dispatch",
		LoggerName("groundcontrol"),
		Topic("menu:open"),
		Patterns([]string{"menu:*", "*:open"}),
		Subscriber("sub-1"),
		Error(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, "logger=groundcontrol")
	assert.Contains(t, out, "topic=menu:open")
	assert.Contains(t, out, "patterns=\"[menu:* *:open]\"")
	assert.Contains(t, out, "subscriber=sub-1")
	assert.Contains(t, out, "error=boom")
}

func TestPanic(t *testing.T) {
	attr := Panic("kaboom", []byte("goroutine 1"))
	assert.Equal(t, "panic", attr.Key)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())

	group := attr.Value.Group()
	assert.Len(t, group, 2)
	assert.Equal(t, "kaboom", group[0].Value.Any())
	assert.Equal(t, "goroutine 1", group[1].Value.String())
}
