package grammar

import (
	"strconv"
	"strings"
)

// Security context keys understood by Context.
const (
	ContextRunAsUser = "runAsUser"
	ContextFSGroup   = "fsGroup"
)

var contextKeys = map[string]string{
	"user":  ContextRunAsUser,
	"group": ContextFSGroup,
}

// Metadata parses `k=v;k=v` into a flat map with trimmed keys and values.
func Metadata(expr string) map[string]string {
	out := map[string]string{}
	for _, set := range splitList(expr, ";") {
		key, value, _ := strings.Cut(set, "=")
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

// Context parses `user=N;group=N` into security context fields. Unknown
// keys and non-integer values are dropped.
func Context(expr string) map[string]int64 {
	out := map[string]int64{}
	for key, value := range Metadata(expr) {
		field, ok := contextKeys[key]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out
}
