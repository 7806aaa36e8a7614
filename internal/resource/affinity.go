package resource

import (
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/transfigure/cli/internal/spec"
)

// topologies maps affinity scopes onto well-known node labels.
var topologies = map[string]string{
	"host":          "kubernetes.io/hostname",
	"zone":          "topology.kubernetes.io/zone",
	"region":        "topology.kubernetes.io/region",
	"instance-type": "node.kubernetes.io/instance-type",
	"os":            "kubernetes.io/os",
	"arch":          "kubernetes.io/arch",
}

var operators = map[string]metav1.LabelSelectorOperator{
	"in":           metav1.LabelSelectorOpIn,
	"notin":        metav1.LabelSelectorOpNotIn,
	"exists":       metav1.LabelSelectorOpExists,
	"doesnotexist": metav1.LabelSelectorOpDoesNotExist,
}

// SelfValue in a match expression stands for the workload's own name.
const SelfValue = "self"

func affinity(t *spec.Table) *corev1.Affinity {
	if t.Affinity == nil || len(t.Affinity.Pod) == 0 {
		return nil
	}
	var pod corev1.PodAffinity
	var anti corev1.PodAntiAffinity
	for _, term := range t.Affinity.Pod {
		topology, ok := topologies[term.Scope]
		if !ok {
			topology = topologies["host"]
			if term.Scope != "" {
				topology = term.Scope
			}
		}
		pat := corev1.PodAffinityTerm{
			LabelSelector: &metav1.LabelSelector{MatchExpressions: matchExpressions(t, term.Match)},
			TopologyKey:   topology,
		}
		weight := term.Weight
		isAnti := weight < 0
		if isAnti {
			weight = -weight
		}

		if term.Type == "hard" {
			if isAnti {
				anti.RequiredDuringSchedulingIgnoredDuringExecution = append(anti.RequiredDuringSchedulingIgnoredDuringExecution, pat)
			} else {
				pod.RequiredDuringSchedulingIgnoredDuringExecution = append(pod.RequiredDuringSchedulingIgnoredDuringExecution, pat)
			}
			continue
		}
		weighted := corev1.WeightedPodAffinityTerm{Weight: weight, PodAffinityTerm: pat}
		if isAnti {
			anti.PreferredDuringSchedulingIgnoredDuringExecution = append(anti.PreferredDuringSchedulingIgnoredDuringExecution, weighted)
		} else {
			pod.PreferredDuringSchedulingIgnoredDuringExecution = append(pod.PreferredDuringSchedulingIgnoredDuringExecution, weighted)
		}
	}

	out := &corev1.Affinity{}
	if len(pod.RequiredDuringSchedulingIgnoredDuringExecution)+len(pod.PreferredDuringSchedulingIgnoredDuringExecution) > 0 {
		out.PodAffinity = &pod
	}
	if len(anti.RequiredDuringSchedulingIgnoredDuringExecution)+len(anti.PreferredDuringSchedulingIgnoredDuringExecution) > 0 {
		out.PodAntiAffinity = &anti
	}
	return out
}

// matchExpressions turns `[{ in = { app = ["a", "self"] } }]` into label
// selector requirements, ordered by operator then key.
func matchExpressions(t *spec.Table, match []map[string]map[string]any) []metav1.LabelSelectorRequirement {
	var out []metav1.LabelSelectorRequirement
	for _, clause := range match {
		ops := make([]string, 0, len(clause))
		for op := range clause {
			ops = append(ops, op)
		}
		sort.Strings(ops)
		for _, op := range ops {
			operator, ok := operators[strings.ToLower(op)]
			if !ok {
				operator = metav1.LabelSelectorOperator(op)
			}
			keys := make([]string, 0, len(clause[op]))
			for key := range clause[op] {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				out = append(out, metav1.LabelSelectorRequirement{
					Key:      key,
					Operator: operator,
					Values:   matchValues(t, operator, clause[op][key]),
				})
			}
		}
	}
	return out
}

func matchValues(t *spec.Table, op metav1.LabelSelectorOperator, v any) []string {
	if op == metav1.LabelSelectorOpExists || op == metav1.LabelSelectorOpDoesNotExist {
		return nil
	}
	var raw []any
	switch vals := v.(type) {
	case []any:
		raw = vals
	case nil:
		return nil
	default:
		raw = []any{vals}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s := fmt.Sprint(item)
		if s == SelfValue {
			s = t.Name
		}
		out = append(out, s)
	}
	return out
}
