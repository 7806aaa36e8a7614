package resource

import (
	"fmt"
	"path/filepath"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/spec"
)

// SecretLookup reports whether a secret is declared in a namespace.
type SecretLookup interface {
	HasSecret(namespace, name string) bool
}

// ConfigFile is a file mounted through a config map volume.
type ConfigFile struct {
	Namespace string
	Map       string
	Key       string
	// Source is the file on disk that provides the content.
	Source string
}

// ConfigSink receives the files mounted through config map volumes.
type ConfigSink interface {
	AddConfigFile(f ConfigFile) error
}

// Assembler builds definitions from specification tables.
type Assembler struct {
	Versions *apiversion.Resolver
	Secrets  SecretLookup
	Config   ConfigSink
	Proxy    *ProxyTemplates
}

// Build assembles every object t asks for. t must already carry its
// effective scale.
func (a *Assembler) Build(t *spec.Table) (*Definition, error) {
	if a.Versions == nil {
		return nil, fmt.Errorf("assembler has no api version resolver")
	}
	d := &Definition{FQN: t.FQN(), Name: t.Name, Namespace: t.Namespace}

	if len(t.Ports) > 0 {
		d.Services = a.services(t)
	}

	var err error
	switch {
	case t.Job && t.Deployment.Schedule != "":
		d.CronJob, err = a.cronJob(t)
	case t.Job:
		d.Job, err = a.job(t)
	case t.Stateful:
		d.StatefulSet, err = a.statefulSet(t)
	case t.Daemon:
		d.DaemonSet, err = a.daemonSet(t)
	case t.Image != "":
		d.Deployment, err = a.deployment(t)
	}
	if err != nil {
		return nil, err
	}
	if !t.Stateful && len(t.Storage) > 0 && d.Controller() != "" {
		d.Claims = a.claims(t)
	}

	if t.Security != nil {
		a.security(t, d)
	}
	if t.Network != nil {
		d.NetworkPolicy = a.networkPolicy(t)
	}

	if t.Service.Subdomain != "" && !t.Daemon {
		block, err := a.proxyBlock(t)
		if err != nil {
			return nil, err
		}
		d.ProxyBlock = block
	}

	output.Debug("assembled definition", "fqn", d.FQN, "controller", d.Controller(), "objects", len(d.Objects()))
	return d, nil
}

func (a *Assembler) typeMeta(kind apiversion.Kind, name string) metav1.TypeMeta {
	return metav1.TypeMeta{APIVersion: a.Versions.Version(kind), Kind: name}
}

// objectMeta is the metadata shared by the objects of a workload: name
// and namespace labels, the table's labels, and its metadata as
// annotations.
func objectMeta(t *spec.Table, name string, namespaced bool) metav1.ObjectMeta {
	meta := metav1.ObjectMeta{
		Name:   name,
		Labels: map[string]string{"name": name},
	}
	if namespaced {
		meta.Namespace = t.Namespace
		meta.Labels["namespace"] = t.Namespace
	}
	for k, v := range grammar.Metadata(t.Labels) {
		meta.Labels[k] = v
	}
	if annotations := grammar.Metadata(t.Metadata); len(annotations) > 0 {
		meta.Annotations = annotations
	}
	return meta
}

// appLabel is the value of the app label selecting the workload's pods.
func appLabel(t *spec.Table) string {
	if t.Stateful {
		return t.Name
	}
	return t.ServiceName()
}

func podLabels(t *spec.Table) map[string]string {
	labels := map[string]string{
		"app":       appLabel(t),
		"name":      t.Name,
		"namespace": t.Namespace,
	}
	for k, v := range grammar.Metadata(t.Labels) {
		labels[k] = v
	}
	return labels
}

func resourceList(values map[string]string) corev1.ResourceList {
	if len(values) == 0 {
		return nil
	}
	list := corev1.ResourceList{}
	for name, v := range values {
		q, err := resource.ParseQuantity(v)
		if err != nil {
			output.Warn("dropping unparseable quantity", "resource", name, "value", v)
			continue
		}
		list[corev1.ResourceName(name)] = q
	}
	return list
}

func specDir(t *spec.Table) string {
	if t.Path == "" {
		return "."
	}
	return filepath.Dir(t.Path)
}

func roleParts(role string) (cluster bool, name string) {
	kind, roleName, ok := strings.Cut(role, ";")
	if !ok {
		return false, role
	}
	return kind == "ClusterRole", roleName
}
