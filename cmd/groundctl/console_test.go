package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/casualjim/groundcontrol"
	"github.com/casualjim/groundcontrol/pattern"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func runScript(t *testing.T, script string, options ...groundcontrol.Option) string {
	t.Helper()
	withoutColor(t)

	hub, err := groundcontrol.New(options...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, hub.Close(ctx))
	})

	var out bytes.Buffer
	c, err := newConsole(hub, &out, false)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), strings.NewReader(script)))
	return out.String()
}

func TestConsole_PublishAndReceive(t *testing.T) {
	out := runScript(t, `
sub ui menu:*
sub audit *:open
pub menu:open {"foo":"bar"}
pub menu:close
flush
`)

	assert.Contains(t, out, "ui subscribed to menu:*")
	assert.Contains(t, out, "[ui] menu:open")
	assert.Contains(t, out, "[ui] menu:close")
	assert.Contains(t, out, "[audit] menu:open")
	assert.NotContains(t, out, "[audit] menu:close")
	assert.Contains(t, out, `"bar"`)
}

func TestConsole_LateSubscriberGetsCachedValue(t *testing.T) {
	out := runScript(t, `
sub early menu:click
pub menu:click cash
flush
sub late menu:click
flush
`)
	assert.Contains(t, out, "[early] menu:click")
	assert.Contains(t, out, "[late] menu:click")
}

func TestConsole_Unsubscribe(t *testing.T) {
	out := runScript(t, `
sub ui menu:open modal:open
unsub ui *:*
pub menu:open
pub modal:open
flush
unsub ghost menu:open
`)
	assert.Contains(t, out, "ui unsubscribed from *:*")
	assert.NotContains(t, out, "[ui]")
	assert.Contains(t, out, `error: no subscriber named "ghost"`)
}

func TestConsole_Errors(t *testing.T) {
	out := runScript(t, `
bogus
sub
sub ui just-a-word
pub *:open
pub
`)
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.Contains(t, out, "usage: sub NAME PATTERN...")
	assert.Contains(t, out, `pattern must be in the form "<module>:<signal>"`)
	assert.Contains(t, out, "wildcards are not allowed")
	assert.Contains(t, out, "usage: pub TOPIC [PAYLOAD]")
}

func TestConsole_PublishDelivery(t *testing.T) {
	out := runScript(t, `
sub ui menu:*
pub {"topic":"menu:open","payload":{"item":"file"}}
pub {"payload":1}
flush
`)
	assert.Contains(t, out, "[ui] menu:open")
	assert.Contains(t, out, `"file"`)
	assert.Contains(t, out, "missing required field 'topic'")
	assert.Regexp(t, `flushed [01] pending rounds`, out)
}

func TestConsole_Dump(t *testing.T) {
	out := runScript(t, `
sub ui menu:*
pub menu:open {"n":1}
dump
`)
	assert.Contains(t, out, `"pattern": "menu:*"`)
	assert.Contains(t, out, `"topic": "menu:open"`)
}

func TestConsole_Schema(t *testing.T) {
	out := runScript(t, "schema\n")
	assert.Contains(t, out, `"pattern"`)
	assert.Contains(t, out, `"subscribers"`)
	assert.Contains(t, out, `"date-time"`)
}

func TestConsole_Help(t *testing.T) {
	out := runScript(t, "help\n")
	assert.Contains(t, out, "groundctl")
	assert.Contains(t, out, "flush")
}

func TestConsole_StopsAtExit(t *testing.T) {
	out := runScript(t, `
sub ui menu:open
exit
sub after menu:open
`)
	assert.Contains(t, out, "ui subscribed")
	assert.NotContains(t, out, "after subscribed")
}

func TestConsole_GlobDiscipline(t *testing.T) {
	out := runScript(t, `
sub cats [CB]at
pub Bat
pub bat
flush
`, groundcontrol.WithDiscipline(pattern.Glob))
	assert.Contains(t, out, "[cats] Bat")
	assert.NotContains(t, out, "[cats] bat")
}
