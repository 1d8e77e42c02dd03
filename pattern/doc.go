// Package pattern decides whether a concrete topic satisfies a subscription
// pattern.
//
// Two disciplines are supported and a hub picks exactly one of them:
//
//   - Strict: a pattern is "<module>:<signal>". Each segment is one or more word
//     characters, or zero or more word characters followed by a single trailing
//     '*'. The '*' matches a run of zero or more word characters
//     ([A-Za-z0-9_]), so it never crosses the ':' separator.
//   - Glob: a pattern is an unconstrained shell glob with '*', '?', '[abc]' and
//     '[!abc]', plus '{a,b}' alternatives and '\' escapes. A malformed glob is
//     matched literally. Published topics may not contain any of these
//     characters, see IsConcrete.
//
// Matching is anchored to the whole topic and case-sensitive:
//
//	pattern.Matches("menu:close", "menu:*")     // true
//	pattern.Matches("menu:close", "me*:close")  // true
//	pattern.Matches("menu:click", "menu:cl")    // false
//	pattern.MatchesGlob("Bat", "[!CP]at")       // true
//
// Everything in this package is pure and safe for concurrent use. A Compiler
// memoizes compiled matchers so hot patterns are only translated once.
package pattern
