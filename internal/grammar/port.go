package grammar

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// portExpr is the decomposed form of `[target<=]port[.proto][=>node]`.
type portExpr struct {
	target   string
	port     string
	node     string
	protocol corev1.Protocol
}

func parsePort(expr string) portExpr {
	p := portExpr{protocol: corev1.ProtocolTCP}
	rest := strings.TrimSpace(expr)
	if before, after, ok := strings.Cut(rest, "=>"); ok {
		p.node = strings.TrimSpace(after)
		rest = before
	}
	if before, after, ok := strings.Cut(rest, "<="); ok {
		p.target = strings.TrimSpace(before)
		rest = after
	}
	p.port = strings.TrimSpace(rest)

	// The protocol suffix conventionally follows the port, but accept it on
	// any segment.
	for _, seg := range []*string{&p.port, &p.target, &p.node} {
		if base, proto, ok := strings.Cut(*seg, "."); ok {
			*seg = base
			if proto != "" {
				p.protocol = corev1.Protocol(strings.ToUpper(proto))
			}
		}
	}
	return p
}

// portValue renders a port reference as a value; numeric text becomes a
// number, anything else a named port.
func portValue(s string) intstr.IntOrString {
	return intstr.Parse(strings.TrimSpace(s))
}

// ContainerPort parses a port expression into its container form. When a
// target is given the container listens on the target.
func ContainerPort(name, expr string) corev1.ContainerPort {
	p := parsePort(expr)
	port := p.port
	if p.target != "" {
		port = p.target
	}
	return corev1.ContainerPort{
		Name:          name,
		ContainerPort: atoi32(port),
		Protocol:      p.protocol,
	}
}

// ServicePort parses a port expression into its service form. The target
// port defaults to the port itself.
func ServicePort(name, expr string) corev1.ServicePort {
	p := parsePort(expr)
	sp := corev1.ServicePort{
		Name:       name,
		Port:       atoi32(p.port),
		TargetPort: portValue(p.port),
		Protocol:   p.protocol,
	}
	if p.target != "" {
		sp.TargetPort = portValue(p.target)
	}
	if p.node != "" {
		sp.NodePort = atoi32(p.node)
	}
	return sp
}

// ContainerPorts parses a table of named port expressions, ordered by name.
func ContainerPorts(ports map[string]any) []corev1.ContainerPort {
	var out []corev1.ContainerPort
	for _, name := range sortedKeys(ports) {
		out = append(out, ContainerPort(name, fmt.Sprint(ports[name])))
	}
	return out
}

// ServicePorts parses a table of named port expressions, ordered by name.
func ServicePorts(ports map[string]any) []corev1.ServicePort {
	var out []corev1.ServicePort
	for _, name := range sortedKeys(ports) {
		out = append(out, ServicePort(name, fmt.Sprint(ports[name])))
	}
	return out
}
