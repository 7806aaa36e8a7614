// Package cluster folds every workload definition of a source tree into
// one cluster model.
//
// Assembly runs in two explicit phases. Assemble builds and adds one
// definition per specification file, strictly in sequence. Finalize runs
// once afterwards and splices the pending reverse proxy blocks into the
// shared proxy configuration.
package cluster

import (
	"errors"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"

	"github.com/transfigure/cli/internal/apiversion"
	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/resource"
)

// ErrFinalized is returned when a finalized model is changed or finalized
// again.
var ErrFinalized = errors.New("cluster model already finalized")

// Entry is a workload's line in the cluster configuration: its ordering
// level and its scale tier expressions.
type Entry struct {
	Name      string
	Namespace string
	Order     int
	Tiers     map[string]string
}

// FQN returns name.namespace.
func (e *Entry) FQN() string {
	return e.Name + "." + e.Namespace
}

// Options configures loading and assembly.
type Options struct {
	// Data binds the tokens of the source tree.
	Data map[string]any
	// APIVersion is the target platform version.
	APIVersion string
	// Scale names the requested scale tier.
	Scale string
}

// Model is the resolved cluster.
type Model struct {
	Root       string
	APIVersion string
	ScaleOrder []string
	Namespaces []string
	Resources  map[string]*resource.Definition
	// Order maps a level to the fqns registered on it, in insertion order.
	Order  map[int][]string
	Levels []int

	Configuration    []*corev1.ConfigMap
	Secrets          []*corev1.Secret
	ImagePullSecrets map[string]map[string]*corev1.Secret
	Entries          map[string]*Entry

	opts        Options
	versions    *apiversion.Resolver
	configIndex map[string]*corev1.ConfigMap
	splice      *spliceTarget
	pending     []pendingBlock
	proxyConfig string
	finalized   bool
}

type spliceTarget struct {
	configMap *corev1.ConfigMap
	key       string
}

type pendingBlock struct {
	fqn   string
	block string
}

func newModel(root string, opts Options) (*Model, error) {
	versions, err := apiversion.NewResolver(opts.APIVersion)
	if err != nil {
		return nil, oerrors.NewValidationError(err.Error(), root, "apiVersion", "use a platform version such as 1.9 or 1.27")
	}
	return &Model{
		Root:             root,
		APIVersion:       versions.Platform(),
		Resources:        map[string]*resource.Definition{},
		Order:            map[int][]string{},
		ImagePullSecrets: map[string]map[string]*corev1.Secret{},
		Entries:          map[string]*Entry{},
		opts:             opts,
		versions:         versions,
		configIndex:      map[string]*corev1.ConfigMap{},
	}, nil
}

// Add inserts a definition. Fully qualified names are unique within a
// model.
func (m *Model) Add(d *resource.Definition) error {
	if m.finalized {
		return ErrFinalized
	}
	if _, exists := m.Resources[d.FQN]; exists {
		return oerrors.NewValidationError(fmt.Sprintf("duplicate workload %q", d.FQN), m.Root, "name",
			"name workloads uniquely within a namespace")
	}
	if entry, ok := m.Entries[d.FQN]; ok {
		d.Level = entry.Order
	}
	m.Resources[d.FQN] = d
	m.addNamespace(d.Namespace)
	m.register(d.FQN, d.Level)
	if d.ProxyBlock != "" {
		m.pending = append(m.pending, pendingBlock{fqn: d.FQN, block: d.ProxyBlock})
	}
	return nil
}

func (m *Model) addNamespace(ns string) {
	i := sort.SearchStrings(m.Namespaces, ns)
	if i < len(m.Namespaces) && m.Namespaces[i] == ns {
		return
	}
	m.Namespaces = append(m.Namespaces, "")
	copy(m.Namespaces[i+1:], m.Namespaces[i:])
	m.Namespaces[i] = ns
}

// register places fqn on a level once.
func (m *Model) register(fqn string, level int) {
	for _, existing := range m.Order[level] {
		if existing == fqn {
			return
		}
	}
	if _, known := m.Order[level]; !known {
		m.Levels = append(m.Levels, level)
		sort.Ints(m.Levels)
	}
	m.Order[level] = append(m.Order[level], fqn)
}

// HasSecret reports whether a secret or image pull secret is declared in
// namespace under name.
func (m *Model) HasSecret(namespace, name string) bool {
	for _, s := range m.Secrets {
		if s.Namespace == namespace && s.Name == name {
			return true
		}
	}
	for _, s := range m.ImagePullSecrets[namespace] {
		if s.Name == name {
			return true
		}
	}
	return false
}

// ConfigMap returns the shared config map ns/name.
func (m *Model) ConfigMap(namespace, name string) (*corev1.ConfigMap, bool) {
	cm, ok := m.configIndex[namespace+"/"+name]
	return cm, ok
}

// ProxyConfig returns the finalized proxy configuration, or "" when the
// source declares none.
func (m *Model) ProxyConfig() string {
	return m.proxyConfig
}

// Finalized reports whether Finalize has run.
func (m *Model) Finalized() bool {
	return m.finalized
}

// FQNs lists the definitions by level, then insertion order.
func (m *Model) FQNs() []string {
	var out []string
	for _, level := range m.Levels {
		for _, fqn := range m.Order[level] {
			if _, ok := m.Resources[fqn]; ok {
				out = append(out, fqn)
			}
		}
	}
	return out
}

func replicas(d *resource.Definition) int32 {
	switch {
	case d.Deployment != nil && d.Deployment.Spec.Replicas != nil:
		return *d.Deployment.Spec.Replicas
	case d.StatefulSet != nil && d.StatefulSet.Spec.Replicas != nil:
		return *d.StatefulSet.Spec.Replicas
	case d.Job != nil && d.Job.Spec.Parallelism != nil:
		return *d.Job.Spec.Parallelism
	case d.CronJob != nil && d.CronJob.Spec.JobTemplate.Spec.Parallelism != nil:
		return *d.CronJob.Spec.JobTemplate.Spec.Parallelism
	}
	return 0
}
