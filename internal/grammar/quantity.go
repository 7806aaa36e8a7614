package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/transfigure/cli/internal/units"
)

var (
	requestRegex = regexp.MustCompile(`>\s*([.0-9]+)\s*([a-zA-Z%]+)?`)
	limitRegex   = regexp.MustCompile(`<\s*([.0-9]+)\s*([a-zA-Z%]+)?`)
)

// Bound is one matched side of a quantity expression.
type Bound struct {
	Amount float64
	Unit   string
}

// Bounds matches the request (`>`) and limit (`<`) sides of a quantity
// expression independently. A side that is absent is nil.
func Bounds(expr string) (request, limit *Bound) {
	return matchBound(requestRegex, expr), matchBound(limitRegex, expr)
}

func matchBound(re *regexp.Regexp, expr string) *Bound {
	m := re.FindStringSubmatch(expr)
	if m == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &Bound{Amount: amount, Unit: m[2]}
}

// dimensions maps scale dimension names onto resource names.
var dimensions = map[string]string{
	"cpu":    units.ResourceCPU,
	"ram":    units.ResourceMemory,
	"memory": units.ResourceMemory,
}

// Resources converts a `> request < limit` expression for the given
// dimension ("cpu" or "ram") into req. Bounds with an unknown unit are
// dropped.
func Resources(dimension, expr string, req *units.Requirements) {
	resource, ok := dimensions[strings.ToLower(strings.TrimSpace(dimension))]
	if !ok {
		return
	}
	request, limit := Bounds(expr)
	if request != nil {
		if v, ok := units.Convert(resource, request.Amount, request.Unit); ok {
			req.SetRequest(resource, v)
		}
	}
	if limit != nil {
		if v, ok := units.Convert(resource, limit.Amount, limit.Unit); ok {
			req.SetLimit(resource, v)
		}
	}
}
