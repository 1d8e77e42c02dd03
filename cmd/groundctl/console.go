package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/casualjim/groundcontrol"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/k0kubun/pp/v3"
	"github.com/tidwall/gjson"
)

const flushTimeout = 5 * time.Second

const helpText = `# groundctl

| command | description |
|---|---|
| sub NAME PATTERN... | subscribe the printer NAME to the patterns |
| unsub NAME PATTERN... | unsubscribe NAME from every pattern the patterns cover |
| pub TOPIC [PAYLOAD] | dispatch PAYLOAD (JSON or text) on TOPIC |
| pub {"topic":..,"payload":..} | dispatch a delivery in dump format |
| flush | wait for scheduled deliveries |
| dump | print the registered patterns as JSON |
| schema | print the JSON schema of a dump entry |
| help | show this help |
| exit | quit |
`

var reflector = jsonschema.Reflector{
	DoNotReference: true,
	Mapper: func(t reflect.Type) *jsonschema.Schema {
		if t == reflect.TypeOf(strfmt.DateTime{}) {
			return &jsonschema.Schema{Type: "string", Format: "date-time"}
		}
		return nil
	},
}

var errUsage = errors.New("usage")

type command func(ctx context.Context, args []string, rest string) error

type console struct {
	hub    *groundcontrol.Hub
	out    *syncWriter
	glam   *glamour.TermRenderer
	pretty *pp.PrettyPrinter
	prompt string

	commands    map[string]command
	subscribers map[string]*groundcontrol.Subscriber
}

func newConsole(hub *groundcontrol.Hub, out io.Writer, colored bool) (*console, error) {
	style := glamour.WithAutoStyle()
	if !colored {
		style = glamour.WithStandardStyle("notty")
	}
	glam, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return nil, err
	}

	pretty := pp.New()
	pretty.SetColoringEnabled(colored)

	c := &console{
		hub:         hub,
		out:         &syncWriter{w: out},
		glam:        glam,
		pretty:      pretty,
		subscribers: make(map[string]*groundcontrol.Subscriber),
	}
	c.commands = map[string]command{
		"sub":    c.subscribe,
		"unsub":  c.unsubscribe,
		"pub":    c.publish,
		"flush":  c.flush,
		"dump":   c.dump,
		"schema": c.schema,
		"help":   c.help,
	}
	return c, nil
}

// Run executes commands read from in until exit, end of input or ctx is done.
func (c *console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanLines)

	for ctx.Err() == nil {
		if c.prompt != "" {
			fmt.Fprint(c.out, c.prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		if name == "exit" || name == "quit" {
			return nil
		}

		cmd, ok := c.commands[name]
		if !ok {
			fmt.Fprintf(c.out, "%s: unknown command %q, try help\n", color.RedString("error"), name)
			continue
		}
		rest = strings.TrimSpace(rest)
		if err := cmd(ctx, strings.Fields(rest), rest); err != nil {
			fmt.Fprintf(c.out, "%s: %v\n", color.RedString("error"), err)
		}
	}
	return nil
}

func (c *console) subscribe(_ context.Context, args []string, _ string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: sub NAME PATTERN...", errUsage)
	}
	name, patterns := args[0], args[1:]

	var r groundcontrol.Receiver = &printer{name: name, out: c.out, pretty: c.pretty}
	if existing, ok := c.subscribers[name]; ok {
		r = existing
	}
	sub, err := c.hub.Subscribe(r, patterns...)
	if err != nil {
		return err
	}
	c.subscribers[name] = sub
	fmt.Fprintf(c.out, "%s subscribed to %s\n", color.CyanString(name), strings.Join(patterns, ", "))
	return nil
}

func (c *console) unsubscribe(_ context.Context, args []string, _ string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: unsub NAME PATTERN...", errUsage)
	}
	name, patterns := args[0], args[1:]

	sub, ok := c.subscribers[name]
	if !ok {
		return fmt.Errorf("no subscriber named %q", name)
	}
	if err := sub.Ignore(patterns...); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s unsubscribed from %s\n", color.CyanString(name), strings.Join(patterns, ", "))
	return nil
}

func (c *console) publish(_ context.Context, args []string, rest string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: pub TOPIC [PAYLOAD]", errUsage)
	}
	if strings.HasPrefix(rest, "{") {
		var d groundcontrol.Delivery
		if err := d.UnmarshalJSON([]byte(rest)); err != nil {
			return err
		}
		return c.hub.Dispatch(d.Topic, d.Payload)
	}
	topic := args[0]
	raw := strings.TrimSpace(strings.TrimPrefix(rest, topic))

	var payload any
	switch {
	case raw == "":
	case gjson.Valid(raw):
		payload = gjson.Parse(raw).Value()
	default:
		payload = raw
	}
	return c.hub.Dispatch(topic, payload)
}

func (c *console) flush(ctx context.Context, _ []string, _ string) error {
	pending := c.hub.Pending()
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := c.hub.Flush(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "flushed %d pending rounds\n", pending)
	return nil
}

func (c *console) dump(_ context.Context, _ []string, _ string) error {
	data, err := json.MarshalIndent(c.hub.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

func (c *console) schema(_ context.Context, _ []string, _ string) error {
	data, err := json.MarshalIndent(reflector.Reflect(&groundcontrol.Binding{}), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

func (c *console) help(_ context.Context, _ []string, _ string) error {
	out, err := c.glam.Render(helpText)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, out)
	return nil
}

// printer is the receiver behind every console subscriber.
type printer struct {
	name   string
	out    io.Writer
	pretty *pp.PrettyPrinter
}

func (p *printer) Receive(_ context.Context, topic string, payload any) {
	fmt.Fprintf(p.out, "%s %s %s\n",
		color.CyanString("["+p.name+"]"),
		color.YellowString(topic),
		p.pretty.Sprint(payload),
	)
}

// syncWriter serializes writes from the console and from delivery goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
