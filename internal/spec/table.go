// Package spec decodes and validates specification tables, one workload
// per file.
package spec

import (
	"github.com/transfigure/cli/internal/units"
)

// Table is one workload's decoded specification.
type Table struct {
	Name            string            `toml:"name"`
	Namespace       string            `toml:"namespace"`
	Image           string            `toml:"image"`
	ImagePullSecret string            `toml:"imagePullSecret"`
	Stateful        bool              `toml:"stateful"`
	Daemon          bool              `toml:"daemon"`
	Job             bool              `toml:"job"`
	Command         any               `toml:"command"`
	Args            any               `toml:"args"`
	Port            int32             `toml:"port"`
	Ports           map[string]any    `toml:"ports"`
	Env             map[string]any    `toml:"env"`
	Mounts          map[string]string `toml:"mounts"`
	Volumes         map[string]string `toml:"volumes"`
	Storage         map[string]string `toml:"storage"`
	Probes          Probes            `toml:"probes"`
	Scale           Scale             `toml:"scale"`
	Deployment      Deployment        `toml:"deployment"`
	Service         Service           `toml:"service"`
	Security        *Security         `toml:"security"`
	Network         *Network          `toml:"network"`
	Affinity        *Affinity         `toml:"affinity"`
	Metadata        string            `toml:"metadata"`
	Labels          string            `toml:"labels"`

	// Resources holds the converted bounds of the effective scale.
	Resources units.Requirements `toml:"-"`

	// Path is the file the table was loaded from.
	Path string `toml:"-"`

	// Raw is the decoded table before struct mapping.
	Raw map[string]any `toml:"-"`
}

// Probes holds readiness and liveness probe expressions.
type Probes struct {
	Ready string `toml:"ready"`
	Live  string `toml:"live"`
}

// Scale is the workload's base scale.
type Scale struct {
	Containers int    `toml:"containers"`
	CPU        string `toml:"cpu"`
	RAM        string `toml:"ram"`
}

// Deployment holds rollout and job settings.
type Deployment struct {
	Unavailable any    `toml:"unavailable"`
	Surge       any    `toml:"surge"`
	History     int32  `toml:"history"`
	Deadline    int32  `toml:"deadline"`
	Ready       int32  `toml:"ready"`
	Restart     string `toml:"restart"`
	Backoff     int32  `toml:"backoff"`
	TimeLimit   int64  `toml:"timeLimit"`
	Schedule    string `toml:"schedule"`
	Completions int32  `toml:"completions"`
	Pull        string `toml:"pull"`
}

// Service describes how the workload is exposed.
type Service struct {
	Alias        string `toml:"alias"`
	Labels       string `toml:"labels"`
	Annotations  string `toml:"annotations"`
	Subdomain    string `toml:"subdomain"`
	LoadBalance  any    `toml:"loadbalance"`
	Affinity     bool   `toml:"affinity"`
	ExternalName string `toml:"externalName"`
}

// Security declares the service account, role and container privileges.
type Security struct {
	Account      string        `toml:"account"`
	Role         string        `toml:"role"`
	Rules        []Rule        `toml:"rules"`
	Context      string        `toml:"context"`
	Escalation   bool          `toml:"escalation"`
	Privileged   bool          `toml:"privileged"`
	Capabilities *Capabilities `toml:"capabilities"`
}

// Rule is one RBAC policy rule; groups become apiGroups.
type Rule struct {
	Groups          []string `toml:"groups"`
	Resources       []string `toml:"resources"`
	ResourceNames   []string `toml:"resourceNames"`
	Verbs           []string `toml:"verbs"`
	NonResourceURLs []string `toml:"nonResourceURLs"`
}

// Capabilities lists Linux capabilities to add and drop.
type Capabilities struct {
	Add  []string `toml:"add"`
	Drop []string `toml:"drop"`
}

// Network declares the workload's network policy.
type Network struct {
	Selector string        `toml:"selector"`
	Ingress  []NetworkRule `toml:"ingress"`
	Egress   []NetworkRule `toml:"egress"`
}

// NetworkRule is one ingress (from) or egress (to) rule.
type NetworkRule struct {
	From  []string `toml:"from"`
	To    []string `toml:"to"`
	Ports []any    `toml:"ports"`
}

// Affinity declares pod (anti-)affinity terms.
type Affinity struct {
	Pod []PodAffinity `toml:"pod"`
}

// PodAffinity is one affinity term. A negative weight makes it an
// anti-affinity; type "hard" makes it required.
type PodAffinity struct {
	Weight int32                       `toml:"weight"`
	Type   string                      `toml:"type"`
	Scope  string                      `toml:"scope"`
	Match  []map[string]map[string]any `toml:"match"`
}

// FQN returns the fully qualified name, name.namespace.
func (t *Table) FQN() string {
	return t.Name + "." + t.Namespace
}

// ServiceName returns the service alias, or the workload name.
func (t *Table) ServiceName() string {
	if t.Service.Alias != "" {
		return t.Service.Alias
	}
	return t.Name
}

// Replicas returns the container count, at least 1.
func (t *Table) Replicas() int32 {
	if t.Scale.Containers < 1 {
		return 1
	}
	return int32(t.Scale.Containers)
}

// StringKey returns a top-level string value of the raw table.
func (t *Table) StringKey(key string) (string, bool) {
	s, ok := t.Raw[key].(string)
	return s, ok
}
