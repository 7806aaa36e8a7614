package resource

import (
	"path/filepath"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"

	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/spec"
)

func (a *Assembler) container(t *spec.Table) corev1.Container {
	c := corev1.Container{
		Name:    t.Name,
		Image:   t.Image,
		Command: grammar.Command(t.Command),
		Args:    grammar.Args(t.Args),
		Ports:   grammar.ContainerPorts(t.Ports),
		Resources: corev1.ResourceRequirements{
			Requests: resourceList(t.Resources.Requests),
			Limits:   resourceList(t.Resources.Limits),
		},
	}
	if len(t.Env) > 0 {
		c.Env = grammar.Environment(t.Env, func(name string) bool {
			return a.Secrets != nil && a.Secrets.HasSecret(t.Namespace, name)
		})
	}
	if t.Deployment.Pull != "" {
		c.ImagePullPolicy = corev1.PullPolicy(t.Deployment.Pull)
	}
	if t.Probes.Ready != "" {
		c.ReadinessProbe = grammar.Probe(t.Probes.Ready)
	}
	if t.Probes.Live != "" {
		c.LivenessProbe = grammar.Probe(t.Probes.Live)
	}
	c.SecurityContext = containerSecurity(t.Security)

	names := make([]string, 0, len(t.Mounts))
	for name := range t.Mounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.VolumeMounts = append(c.VolumeMounts, corev1.VolumeMount{Name: name, MountPath: t.Mounts[name]})
	}
	return c
}

func containerSecurity(sec *spec.Security) *corev1.SecurityContext {
	if sec == nil {
		return nil
	}
	var sc corev1.SecurityContext
	set := false
	if sec.Escalation {
		v := true
		sc.AllowPrivilegeEscalation = &v
		set = true
	}
	if sec.Privileged {
		v := true
		sc.Privileged = &v
		set = true
	}
	if sec.Capabilities != nil && (len(sec.Capabilities.Add) > 0 || len(sec.Capabilities.Drop) > 0) {
		sc.Capabilities = &corev1.Capabilities{
			Add:  capabilities(sec.Capabilities.Add),
			Drop: capabilities(sec.Capabilities.Drop),
		}
		set = true
	}
	if user, ok := grammar.Context(sec.Context)[grammar.ContextRunAsUser]; ok {
		sc.RunAsUser = &user
		set = true
	}
	if !set {
		return nil
	}
	return &sc
}

func capabilities(names []string) []corev1.Capability {
	if len(names) == 0 {
		return nil
	}
	out := make([]corev1.Capability, len(names))
	for i, n := range names {
		out[i] = corev1.Capability(n)
	}
	return out
}

// podSpec builds the single-container pod spec shared by every controller.
// Files of mounted config maps are registered with the config sink.
func (a *Assembler) podSpec(t *spec.Table) (corev1.PodSpec, error) {
	ps := corev1.PodSpec{
		Containers: []corev1.Container{a.container(t)},
		Affinity:   affinity(t),
	}
	volumes, err := a.volumes(t)
	if err != nil {
		return ps, err
	}
	ps.Volumes = volumes
	if t.Security != nil {
		ps.ServiceAccountName = t.Security.Account
		if group, ok := grammar.Context(t.Security.Context)[grammar.ContextFSGroup]; ok {
			ps.SecurityContext = &corev1.PodSecurityContext{FSGroup: &group}
		}
	}
	if t.ImagePullSecret != "" {
		ps.ImagePullSecrets = []corev1.LocalObjectReference{{Name: t.ImagePullSecret}}
	}
	return ps, nil
}

func (a *Assembler) volumes(t *spec.Table) ([]corev1.Volume, error) {
	names := make([]string, 0, len(t.Volumes))
	for name := range t.Volumes {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []corev1.Volume
	for _, name := range names {
		vol := grammar.Volume(name, t.Volumes[name])
		if vol.ConfigMap != nil && a.Config != nil {
			for _, item := range vol.ConfigMap.Items {
				err := a.Config.AddConfigFile(ConfigFile{
					Namespace: t.Namespace,
					Map:       vol.ConfigMap.Name,
					Key:       item.Key,
					Source:    filepath.Join(specDir(t), item.Key),
				})
				if err != nil {
					return nil, err
				}
			}
		}
		out = append(out, vol)
	}

	// Claims of non-stateful workloads are standalone and mounted by name.
	if !t.Stateful {
		for _, name := range sortedStorage(t.Storage) {
			if _, declared := t.Volumes[name]; declared {
				continue
			}
			out = append(out, corev1.Volume{
				Name: name,
				VolumeSource: corev1.VolumeSource{
					PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: name},
				},
			})
		}
	}
	return out, nil
}

func sortedStorage(storage map[string]string) []string {
	names := make([]string, 0, len(storage))
	for name := range storage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// servicePort picks the port the reverse proxy forwards to: the explicit
// port, a single declared port, or a port whose name mentions http.
func servicePort(t *spec.Table) int32 {
	if t.Port != 0 {
		return t.Port
	}
	ports := grammar.ContainerPorts(t.Ports)
	if len(ports) == 1 {
		return ports[0].ContainerPort
	}
	var port int32
	for _, p := range ports {
		if strings.Contains(p.Name, "http") {
			port = p.ContainerPort
		}
	}
	if port == 0 {
		port = 80
	}
	return port
}
