// Package token discovers, verifies and expands the template tokens
// embedded in specification files.
//
// A tag is written <%[control] expression %>. Identifiers and dotted chains
// inside a tag are tokens that must be bound by externally supplied data;
// quoted literals and function names are not.
package token

import (
	"regexp"
	"strings"
)

var (
	tagRegex = regexp.MustCompile(`<%([+=-]?)\s*((?:[^%]|%[^>])*?)\s*%>`)

	// Alternatives are tried left to right: quoted literals and call names
	// are consumed before a bare identifier can match.
	lexemeRegex = regexp.MustCompile(`(['"][^'"]*['"])|([a-zA-Z_][_a-zA-Z0-9.]*)\s*\(|([a-zA-Z_][_a-zA-Z0-9.]*)`)
)

// keywords are words of the tag language that never name data.
var keywords = map[string]bool{
	"if": true, "else": true, "end": true,
	"not": true, "and": true, "or": true,
	"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true,
	"true": true, "false": true, "nil": true,
}

// HasTokens reports whether text contains at least one tag.
func HasTokens(text string) bool {
	return tagRegex.MatchString(text)
}

// Scan returns the distinct tokens referenced by the tags in text, in order
// of first appearance.
func Scan(text string) []string {
	var tokens []string
	seen := map[string]bool{}
	for _, tag := range tagRegex.FindAllStringSubmatch(text, -1) {
		for _, m := range lexemeRegex.FindAllStringSubmatch(tag[2], -1) {
			tok := strings.TrimRight(m[3], ".")
			if tok == "" || keywords[tok] || seen[tok] {
				continue
			}
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Union merges token lists, keeping first-seen order.
func Union(lists ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range lists {
		for _, tok := range list {
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	return out
}
