// Package units converts compact quantity tokens into canonical Kubernetes
// quantity strings.
package units

import (
	"math"
	"strconv"
)

type conversion struct {
	factor float64
	unit   string
}

var memoryUnits = map[string]conversion{
	"Gi": {1024, "Mi"},
	"Mi": {1, "Mi"},
	"Ki": {0.0009765625, "Mi"},
}

// Percent is hundredths of a core; a bare number is whole cores.
var cpuUnits = map[string]conversion{
	"":   {1000, "m"},
	"%":  {10, "m"},
	"Mi": {1, "m"},
	"m":  {1, "m"},
}

// Memory converts an amount in Ki, Mi or Gi into mebibytes.
// The second return value is false for an unknown unit.
func Memory(amount float64, unit string) (string, bool) {
	c, ok := memoryUnits[unit]
	if !ok {
		return "", false
	}
	v := math.Round(amount*c.factor*1e6) / 1e6
	return strconv.FormatFloat(v, 'f', -1, 64) + c.unit, true
}

// CPU converts cores, percent of a core or millicores into whole millicores.
func CPU(amount float64, unit string) (string, bool) {
	c, ok := cpuUnits[unit]
	if !ok {
		return "", false
	}
	v := math.Round(amount * c.factor)
	return strconv.FormatFloat(v, 'f', -1, 64) + c.unit, true
}

// Convert dispatches on a resource name ("cpu" or "memory").
func Convert(resource string, amount float64, unit string) (string, bool) {
	switch resource {
	case ResourceCPU:
		return CPU(amount, unit)
	case ResourceMemory:
		return Memory(amount, unit)
	}
	return "", false
}
