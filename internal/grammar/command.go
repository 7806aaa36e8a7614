package grammar

import (
	"fmt"
	"strings"
)

// Command normalizes a command value. Arrays pass through, multi-line text
// becomes a single element with tabs expanded to two spaces, and anything
// else is split on single spaces. Quoted arguments containing spaces are
// not preserved.
func Command(v any) []string {
	switch c := v.(type) {
	case nil:
		return nil
	case []string:
		return c
	case []any:
		return stringList(c)
	case string:
		if strings.Contains(c, "\n") {
			return []string{strings.ReplaceAll(c, "\t", "  ")}
		}
		return strings.Split(c, " ")
	default:
		return []string{fmt.Sprint(c)}
	}
}

// Args normalizes an args value: arrays pass through, text is split on
// single spaces.
func Args(v any) []string {
	switch a := v.(type) {
	case nil:
		return nil
	case []string:
		return a
	case []any:
		return stringList(a)
	case string:
		return strings.Split(a, " ")
	default:
		return []string{fmt.Sprint(a)}
	}
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
