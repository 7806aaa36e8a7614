// Package scale resolves named scale tiers into one effective scale.
//
// Tiers are configured in order, for example "small, medium, large". A
// tier that leaves a dimension unset inherits it from the tier before it,
// and the first tier inherits from the workload's own base scale. Tiers
// never look ahead.
package scale

import (
	"maps"

	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/units"
)

// Base is the workload's declared scale.
type Base struct {
	Containers int
	CPU        string
	RAM        string
}

// EffectiveScale is the resolved scale of a workload.
type EffectiveScale struct {
	Containers    int
	Resources     units.Requirements
	StorageDeltas map[string]int
}

// tier is the unconverted state of one resolved tier.
type tier struct {
	containers *grammar.ContainerOp
	cpu        string
	ram        string
	storage    map[string]int
}

// Resolve returns the effective scale for the requested tier. tiers maps
// tier names to scale factor expressions. An empty request, an empty
// order, or a tier missing from the order yields the base scale.
func Resolve(requested string, order []string, tiers map[string]string, base Base) EffectiveScale {
	if base.Containers < 1 {
		base.Containers = 1
	}
	current := tier{cpu: base.CPU, ram: base.RAM}

	found := false
	for _, name := range order {
		if expr, ok := tiers[name]; ok {
			current = current.overlay(grammar.ScaleFactor(expr))
		}
		if name == requested {
			found = true
			break
		}
	}
	if requested == "" || !found {
		current = tier{cpu: base.CPU, ram: base.RAM}
	}
	return current.effective(base.Containers)
}

// overlay returns the tier defined by f, inheriting every dimension f
// leaves unset from t.
func (t tier) overlay(f grammar.Factor) tier {
	next := t
	if f.Containers != nil {
		op := *f.Containers
		next.containers = &op
	}
	if f.CPU != "" {
		next.cpu = f.CPU
	}
	if f.RAM != "" {
		next.ram = f.RAM
	}
	if f.Storage != nil {
		next.storage = maps.Clone(f.Storage)
	}
	return next
}

// effective converts t. Container operations always apply to the base
// count.
func (t tier) effective(baseContainers int) EffectiveScale {
	out := EffectiveScale{Containers: baseContainers}
	if t.containers != nil {
		out.Containers = t.containers.Apply(baseContainers)
	}
	if t.cpu != "" {
		grammar.Resources("cpu", t.cpu, &out.Resources)
	}
	if t.ram != "" {
		grammar.Resources("ram", t.ram, &out.Resources)
	}
	if t.storage != nil {
		out.StorageDeltas = maps.Clone(t.storage)
	}
	return out
}
