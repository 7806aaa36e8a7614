package resource

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/spec"
)

// services builds the workload's service. A stateful workload's service is
// headless; when it has an alias distinct from its name, a headless copy
// named after the alias governs the set and the exposed service keeps the
// workload name.
func (a *Assembler) services(t *spec.Table) []*corev1.Service {
	name := t.ServiceName()
	svc := &corev1.Service{
		TypeMeta:   a.typeMeta(apiversion.Service, "Service"),
		ObjectMeta: objectMeta(t, name, true),
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{"app": appLabel(t)},
			Ports:    grammar.ServicePorts(t.Ports),
		},
	}
	svc.Labels["app"] = name
	for k, v := range grammar.Metadata(t.Service.Labels) {
		svc.Labels[k] = v
	}
	if annotations := grammar.Metadata(t.Service.Annotations); len(annotations) > 0 {
		if svc.Annotations == nil {
			svc.Annotations = map[string]string{}
		}
		for k, v := range annotations {
			svc.Annotations[k] = v
		}
	}

	var out []*corev1.Service
	if t.Stateful {
		if name != t.Name {
			headless := svc.DeepCopy()
			headless.Spec.ClusterIP = corev1.ClusterIPNone
			out = append(out, headless)

			svc.Name = t.Name
			svc.Labels["app"] = t.Name
			svc.Labels["name"] = t.Name
		} else {
			svc.Spec.ClusterIP = corev1.ClusterIPNone
		}
	}

	for _, port := range svc.Spec.Ports {
		if port.NodePort != 0 {
			svc.Spec.Type = corev1.ServiceTypeNodePort
			break
		}
	}
	switch lb := t.Service.LoadBalance.(type) {
	case bool:
		if lb {
			svc.Spec.Type = corev1.ServiceTypeLoadBalancer
		}
	case string:
		if lb != "" {
			svc.Spec.Type = corev1.ServiceTypeLoadBalancer
			svc.Spec.ExternalTrafficPolicy = corev1.ServiceExternalTrafficPolicy(lb)
		}
	}
	if t.Service.Affinity {
		svc.Spec.SessionAffinity = corev1.ServiceAffinityClientIP
	}
	if t.Service.ExternalName != "" {
		svc.Spec.Type = corev1.ServiceTypeExternalName
		svc.Spec.ExternalName = t.Service.ExternalName
		svc.Spec.ClusterIP = ""
	}
	return append(out, svc)
}
