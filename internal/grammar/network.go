package grammar

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NetworkSource parses a network policy peer:
//
//	10.0.0.0/16 ! 10.0.1.0/24      ip block with exclusions
//	namespace=k:v;k:v              namespace selector
//	pod=k:v;k:v                    pod selector
func NetworkSource(expr string) networkingv1.NetworkPolicyPeer {
	expr = strings.TrimSpace(expr)
	if rest, ok := strings.CutPrefix(expr, "namespace="); ok {
		return networkingv1.NetworkPolicyPeer{
			NamespaceSelector: &metav1.LabelSelector{MatchLabels: PodSelector(rest)},
		}
	}
	if rest, ok := strings.CutPrefix(expr, "pod="); ok {
		return networkingv1.NetworkPolicyPeer{
			PodSelector: &metav1.LabelSelector{MatchLabels: PodSelector(rest)},
		}
	}

	parts := strings.Split(expr, "!")
	block := &networkingv1.IPBlock{CIDR: strings.TrimSpace(parts[0])}
	for _, except := range parts[1:] {
		if except = strings.TrimSpace(except); except != "" {
			block.Except = append(block.Except, except)
		}
	}
	return networkingv1.NetworkPolicyPeer{IPBlock: block}
}

// PodSelector parses `k:v;k:v` into a label map. Values may contain any
// character but ';'.
func PodSelector(expr string) map[string]string {
	labels := map[string]string{}
	for _, pair := range splitList(expr, ";") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		labels[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return labels
}

// PolicyPort parses `port[.tcp|udp]`.
func PolicyPort(expr string) networkingv1.NetworkPolicyPort {
	port, proto, _ := strings.Cut(strings.TrimSpace(expr), ".")
	protocol := corev1.ProtocolTCP
	if proto != "" {
		protocol = corev1.Protocol(strings.ToUpper(proto))
	}
	value := portValue(port)
	return networkingv1.NetworkPolicyPort{Protocol: &protocol, Port: &value}
}
