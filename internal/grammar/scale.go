package grammar

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	containerRegex = regexp.MustCompile(`([+*=])\s*([0-9]+)`)
	storageRegex   = regexp.MustCompile(`([a-zA-Z0-9_-]+)\s*[+]\s*([0-9]+)\s*Gi`)
	dimensionRegex = regexp.MustCompile(`\b(cpu|ram)\b`)
)

// ContainerOp is a container count adjustment applied to a base count.
type ContainerOp struct {
	Op      byte
	Operand int
}

// Apply evaluates the operation against base.
func (c ContainerOp) Apply(base int) int {
	switch c.Op {
	case '+':
		return base + c.Operand
	case '*':
		return base * c.Operand
	case '=':
		return c.Operand
	}
	return base
}

// Factor is one parsed scale-tier expression. Unset dimensions are nil or
// empty.
type Factor struct {
	Containers *ContainerOp
	CPU        string
	RAM        string
	Storage    map[string]int
}

// ScaleFactor parses `;` separated clauses, each introduced by one of the
// words container, cpu, ram or storage:
//
//	container + 2; cpu > .5 < 1; ram > 1Gi; storage = data + 5Gi, logs + 2Gi
//
// Clauses that match none of these are ignored.
func ScaleFactor(expr string) Factor {
	var f Factor
	for _, clause := range splitList(expr, ";") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.Contains(clause, "container"):
			if m := containerRegex.FindStringSubmatch(clause); m != nil {
				n, _ := strconv.Atoi(m[2])
				f.Containers = &ContainerOp{Op: m[1][0], Operand: n}
			}
		case strings.Contains(clause, "cpu"):
			f.CPU = dimensionText(clause)
		case strings.Contains(clause, "ram"):
			f.RAM = dimensionText(clause)
		case strings.Contains(clause, "storage"):
			f.Storage = storageDeltas(clause)
		}
	}
	return f
}

func dimensionText(clause string) string {
	return strings.TrimSpace(dimensionRegex.ReplaceAllString(clause, ""))
}

func storageDeltas(clause string) map[string]int {
	_, assignments, ok := strings.Cut(clause, "=")
	if !ok {
		return nil
	}
	deltas := map[string]int{}
	for _, set := range splitList(assignments, ",") {
		m := storageRegex.FindStringSubmatch(set)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[2])
		deltas[m[1]] = n
	}
	return deltas
}
