package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Wildcard is the marker that matches a run of characters inside a pattern.
const Wildcard = "*"

// ErrInvalidFormat is returned when a pattern violates the "<module>:<signal>" rule.
var ErrInvalidFormat = errors.New(`pattern must be in the form "<module>:<signal>"`)

var strictFormat = regexp.MustCompile(`^(\w+|\w*\*):(\w+|\w*\*)$`)

// Discipline selects the pattern syntax a hub accepts.
type Discipline int

const (
	// Strict accepts "<module>:<signal>" patterns with at most one trailing
	// wildcard per segment.
	Strict Discipline = iota
	// Glob accepts shell glob patterns without any structural rule.
	Glob
)

func (d Discipline) String() string {
	switch d {
	case Strict:
		return "strict"
	case Glob:
		return "glob"
	default:
		return fmt.Sprintf("discipline(%d)", int(d))
	}
}

// ParseDiscipline converts the name of a discipline back into its value.
// An empty name selects Strict.
func ParseDiscipline(name string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict":
		return Strict, nil
	case "glob":
		return Glob, nil
	default:
		return Strict, fmt.Errorf("unknown pattern discipline %q", name)
	}
}

// Validate reports whether p is an acceptable subscription pattern under d.
func Validate(d Discipline, p string) error {
	switch d {
	case Glob:
		if p == "" {
			return fmt.Errorf("%w: empty pattern", ErrInvalidFormat)
		}
		return nil
	default:
		if !strictFormat.MatchString(p) {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, p)
		}
		return nil
	}
}

// globSyntax holds every character the glob engine gives a meaning to:
// wildcards, classes, {a,b} alternatives and the '\' escape. A topic holding
// one of them could never match its own literal pattern.
const globSyntax = `*?[]{}\`

// IsConcrete reports whether topic is free of wildcard markers, and can
// therefore be published. Under Glob this excludes all of the glob syntax,
// not only the wildcards.
func IsConcrete(d Discipline, topic string) bool {
	if d == Glob {
		return !strings.ContainsAny(topic, globSyntax)
	}
	return !strings.Contains(topic, Wildcard)
}

var (
	strictDefault = NewCompiler(Strict)
	globDefault   = NewCompiler(Glob)
)

// Matches reports whether topic satisfies the strict wildcard pattern.
func Matches(topic, pattern string) bool {
	return strictDefault.Matches(topic, pattern)
}

// MatchesGlob reports whether topic satisfies the shell glob pattern.
func MatchesGlob(topic, pattern string) bool {
	return globDefault.Matches(topic, pattern)
}
