package resource

import (
	"strconv"

	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/spec"
)

func (a *Assembler) networkPolicy(t *spec.Table) *networkingv1.NetworkPolicy {
	n := t.Network
	np := &networkingv1.NetworkPolicy{
		TypeMeta:   a.typeMeta(apiversion.NetworkPolicy, "NetworkPolicy"),
		ObjectMeta: objectMeta(t, t.Name, true),
		Spec: networkingv1.NetworkPolicySpec{
			PodSelector: metav1.LabelSelector{MatchLabels: grammar.PodSelector(n.Selector)},
		},
	}
	if len(np.Spec.PodSelector.MatchLabels) == 0 {
		np.Spec.PodSelector.MatchLabels = nil
	}
	for _, rule := range n.Ingress {
		np.Spec.Ingress = append(np.Spec.Ingress, networkingv1.NetworkPolicyIngressRule{
			From:  peers(rule.From),
			Ports: policyPorts(rule.Ports),
		})
	}
	for _, rule := range n.Egress {
		np.Spec.Egress = append(np.Spec.Egress, networkingv1.NetworkPolicyEgressRule{
			To:    peers(rule.To),
			Ports: policyPorts(rule.Ports),
		})
	}
	if len(n.Ingress) > 0 {
		np.Spec.PolicyTypes = append(np.Spec.PolicyTypes, networkingv1.PolicyTypeIngress)
	}
	if len(n.Egress) > 0 {
		np.Spec.PolicyTypes = append(np.Spec.PolicyTypes, networkingv1.PolicyTypeEgress)
	}
	return np
}

func peers(exprs []string) []networkingv1.NetworkPolicyPeer {
	var out []networkingv1.NetworkPolicyPeer
	for _, expr := range exprs {
		out = append(out, grammar.NetworkSource(expr))
	}
	return out
}

func policyPorts(ports []any) []networkingv1.NetworkPolicyPort {
	var out []networkingv1.NetworkPolicyPort
	for _, p := range ports {
		var expr string
		switch v := p.(type) {
		case string:
			expr = v
		case int64:
			expr = strconv.FormatInt(v, 10)
		default:
			continue
		}
		out = append(out, grammar.PolicyPort(expr))
	}
	return out
}
