package grammar

import (
	"regexp"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

var (
	tcpProbeRegex  = regexp.MustCompile(`^port:([0-9a-zA-Z_-]+)`)
	httpProbeRegex = regexp.MustCompile(`^:([0-9a-zA-Z_-]+)([/][^,]*)?`)
)

// probeSettings maps probe argument abbreviations to the probe field they set.
var probeSettings = map[string]func(*corev1.Probe, int32){
	"initial": func(p *corev1.Probe, v int32) { p.InitialDelaySeconds = v },
	"period":  func(p *corev1.Probe, v int32) { p.PeriodSeconds = v },
	"timeout": func(p *corev1.Probe, v int32) { p.TimeoutSeconds = v },
	"success": func(p *corev1.Probe, v int32) { p.SuccessThreshold = v },
	"failure": func(p *corev1.Probe, v int32) { p.FailureThreshold = v },
}

// Probe parses a probe expression:
//
//	port:<p>[,args]         tcp socket check
//	:<p>[/path][,args]      http GET, path defaults to /
//	<command ...>[,args]    exec
//
// args are comma separated key=value pairs using the abbreviations
// initial, period, timeout, success and failure.
func Probe(expr string) *corev1.Probe {
	expr = strings.TrimSpace(expr)
	probe := &corev1.Probe{}

	head, args, _ := strings.Cut(expr, ",")
	switch {
	case tcpProbeRegex.MatchString(expr):
		m := tcpProbeRegex.FindStringSubmatch(expr)
		probe.TCPSocket = &corev1.TCPSocketAction{Port: portValue(m[1])}
	case httpProbeRegex.MatchString(expr):
		m := httpProbeRegex.FindStringSubmatch(expr)
		path := m[2]
		if path == "" {
			path = "/"
		}
		probe.HTTPGet = &corev1.HTTPGetAction{Path: path, Port: portValue(m[1])}
		// the path may hold a query string with '=' but never a comma
		args = strings.TrimPrefix(expr[len(m[0]):], ",")
	default:
		probe.Exec = &corev1.ExecAction{Command: strings.Split(strings.TrimSpace(head), " ")}
	}

	for _, assignment := range splitList(args, ",") {
		key, value, ok := strings.Cut(assignment, "=")
		if !ok {
			continue
		}
		if set, known := probeSettings[strings.TrimSpace(key)]; known {
			set(probe, atoi32(value))
		}
	}
	return probe
}
