// Package grammar parses the compact expressions used in specification
// tables (ports, probes, volumes, network sources, quantities, scale
// factors and friends) into Kubernetes-shaped values.
//
// Every parser is total. Field shapes are checked by the validation gate
// before a table reaches this package, so malformed input produces a zero
// or partial value instead of an error.
package grammar

import (
	"sort"
	"strconv"
	"strings"
)

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// atoi32 parses s as a base-10 int32, returning 0 on failure.
func atoi32(s string) int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}

// octal parses a file mode such as "0644".
func octal(s string) (int32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 8, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// splitList splits on sep and drops blank entries.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}
