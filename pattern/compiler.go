package pattern

import (
	"regexp"
	"strings"

	"github.com/alphadose/haxmap"
	"github.com/gobwas/glob"
)

// Matcher is a compiled pattern.
type Matcher interface {
	Match(topic string) bool
}

type literal string

func (l literal) Match(topic string) bool { return string(l) == topic }

type expr struct{ re *regexp.Regexp }

func (e expr) Match(topic string) bool { return e.re.MatchString(topic) }

// Compiler translates patterns into matchers for one discipline and keeps the
// results around. It is safe for concurrent use.
type Compiler struct {
	discipline Discipline
	topics     *haxmap.Map[string, Matcher]
	keys       *haxmap.Map[string, Matcher]
}

// NewCompiler creates a compiler for the given discipline.
func NewCompiler(d Discipline) *Compiler {
	return &Compiler{
		discipline: d,
		topics:     haxmap.New[string, Matcher](),
		keys:       haxmap.New[string, Matcher](),
	}
}

// Discipline returns the discipline this compiler was built for.
func (c *Compiler) Discipline() Discipline {
	return c.discipline
}

// Matches reports whether the concrete topic satisfies pattern.
func (c *Compiler) Matches(topic, pattern string) bool {
	m, _ := c.topics.GetOrCompute(pattern, func() Matcher {
		return c.compile(pattern, `\w*`)
	})
	return m.Match(topic)
}

// Covers reports whether the request pattern selects the registered pattern
// key. It is used to unsubscribe from many registered patterns at once, so
// under Strict the wildcard also spans literal '*' characters in the key.
//
// Parameters:
//   - request: The pattern passed to an unsubscribe call.
//   - key: A pattern as it was registered.
//
// Returns:
//   - bool: true when key is request itself or falls under it. "menu:*"
//     covers "menu:*" and "menu:open", "*:*" covers every key.
func (c *Compiler) Covers(request, key string) bool {
	if request == key {
		return true
	}
	m, _ := c.keys.GetOrCompute(request, func() Matcher {
		return c.compile(request, `[\w*]*`)
	})
	return m.Match(key)
}

func (c *Compiler) compile(pattern, wildcard string) Matcher {
	if c.discipline == Glob {
		g, err := glob.Compile(pattern)
		if err != nil {
			return literal(pattern)
		}
		return g
	}

	if !strings.Contains(pattern, Wildcard) {
		return literal(pattern)
	}
	parts := strings.Split(pattern, Wildcard)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	// QuoteMeta output joined with a fixed class always compiles.
	return expr{re: regexp.MustCompile("^" + strings.Join(parts, wildcard) + "$")}
}
