package scale

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/transfigure/cli/internal/spec"
)

var claimSizeRegex = regexp.MustCompile(`^\s*([0-9]+)\s*Gi$`)

// ApplyStorage returns a copy of storage with each delta added, in Gi, to
// the named claim. The access suffix after ':' is preserved. Deltas for
// claims that are not declared, or whose size is not in Gi, are ignored.
func ApplyStorage(storage map[string]string, deltas map[string]int) map[string]string {
	if storage == nil {
		return nil
	}
	out := make(map[string]string, len(storage))
	for name, claim := range storage {
		out[name] = claim
		delta, ok := deltas[name]
		if !ok {
			continue
		}
		size, suffix, hasSuffix := strings.Cut(claim, ":")
		m := claimSizeRegex.FindStringSubmatch(size)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		grown := strconv.Itoa(n+delta) + "Gi"
		if hasSuffix {
			grown += ":" + suffix
		}
		out[name] = grown
	}
	return out
}

// BaseOf returns the declared scale of a table.
func BaseOf(t *spec.Table) Base {
	return Base{Containers: t.Scale.Containers, CPU: t.Scale.CPU, RAM: t.Scale.RAM}
}

// Tiers collects the tier expressions that apply to t. Expressions from
// the cluster configuration take precedence over top-level keys of the
// table named after a tier.
func Tiers(t *spec.Table, order []string, configured map[string]string) map[string]string {
	tiers := map[string]string{}
	for _, name := range order {
		if expr, ok := configured[name]; ok {
			tiers[name] = expr
		} else if expr, ok := t.StringKey(name); ok {
			tiers[name] = expr
		}
	}
	return tiers
}

// Merge writes an effective scale back into t.
func Merge(t *spec.Table, eff EffectiveScale) {
	t.Scale.Containers = eff.Containers
	t.Resources = eff.Resources
	if len(eff.StorageDeltas) > 0 {
		t.Storage = ApplyStorage(t.Storage, eff.StorageDeltas)
	}
}

// Apply resolves the requested tier for t and merges it.
func Apply(t *spec.Table, requested string, order []string, configured map[string]string) EffectiveScale {
	eff := Resolve(requested, order, Tiers(t, order, configured), BaseOf(t))
	Merge(t, eff)
	return eff
}
