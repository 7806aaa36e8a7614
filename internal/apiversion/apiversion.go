// Package apiversion maps a target platform version onto the API
// group/version string of each resource kind.
package apiversion

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Kind names a resource kind in the version table.
type Kind string

// Kinds known to the version table.
const (
	Account               Kind = "account"
	ConfigMap             Kind = "configMap"
	CronJob               Kind = "cronJob"
	DaemonSet             Kind = "daemonSet"
	Deployment            Kind = "deployment"
	Job                   Kind = "job"
	NetworkPolicy         Kind = "networkPolicy"
	PersistentVolumeClaim Kind = "persistentVolumeClaim"
	Role                  Kind = "role"
	RoleBinding           Kind = "roleBinding"
	Secret                Kind = "secret"
	Service               Kind = "service"
	StatefulSet           Kind = "statefulSet"
)

// DefaultPlatform is the platform version used when none is configured.
const DefaultPlatform = "1.9"

type rule struct {
	constraint string
	version    string
}

// table lists, per kind, constraints checked in order; the first match wins.
var table = map[Kind][]rule{
	Account:               {{"*", "v1"}},
	ConfigMap:             {{"*", "v1"}},
	PersistentVolumeClaim: {{"*", "v1"}},
	Secret:                {{"*", "v1"}},
	Service:               {{"*", "v1"}},
	Job:                   {{"*", "batch/v1"}},
	NetworkPolicy:         {{"*", "networking.k8s.io/v1"}},
	CronJob: {
		{"< 1.8", "batch/v2alpha1"},
		{"< 1.21", "batch/v1beta1"},
		{"*", "batch/v1"},
	},
	DaemonSet: {
		{"< 1.8", "extensions/v1beta1"},
		{"< 1.9", "apps/v1beta2"},
		{"*", "apps/v1"},
	},
	Deployment: {
		{"< 1.6", "extensions/v1beta1"},
		{"< 1.8", "apps/v1beta1"},
		{"< 1.9", "apps/v1beta2"},
		{"*", "apps/v1"},
	},
	StatefulSet: {
		{"< 1.8", "apps/v1beta1"},
		{"< 1.9", "apps/v1beta2"},
		{"*", "apps/v1"},
	},
	Role: {
		{"< 1.8", "rbac.authorization.k8s.io/v1beta1"},
		{"*", "rbac.authorization.k8s.io/v1"},
	},
	RoleBinding: {
		{"< 1.8", "rbac.authorization.k8s.io/v1beta1"},
		{"*", "rbac.authorization.k8s.io/v1"},
	},
}

// Lookup returns the API version string for kind on the given platform
// version ("1.9", "1.27.3", "v1.30").
func Lookup(kind Kind, platform string) (string, error) {
	if platform == "" {
		platform = DefaultPlatform
	}
	v, err := semver.NewVersion(platform)
	if err != nil {
		return "", fmt.Errorf("invalid platform version %q: %w", platform, err)
	}
	rules, ok := table[kind]
	if !ok {
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}
	for _, r := range rules {
		c, err := semver.NewConstraint(r.constraint)
		if err != nil {
			return "", fmt.Errorf("version rule %q for %s: %w", r.constraint, kind, err)
		}
		if c.Check(v) {
			return r.version, nil
		}
	}
	return "", fmt.Errorf("no %s api version for platform %s", kind, platform)
}

// Resolver looks up versions for one fixed platform version.
type Resolver struct {
	platform string
}

// NewResolver validates platform and returns a Resolver for it.
func NewResolver(platform string) (*Resolver, error) {
	if platform == "" {
		platform = DefaultPlatform
	}
	if _, err := semver.NewVersion(platform); err != nil {
		return nil, fmt.Errorf("invalid platform version %q: %w", platform, err)
	}
	return &Resolver{platform: platform}, nil
}

// Platform returns the platform version.
func (r *Resolver) Platform() string {
	return r.platform
}

// Version returns the API version for kind. Every kind in the table
// resolves for a validated platform, so unknown kinds yield "v1".
func (r *Resolver) Version(kind Kind) string {
	v, err := Lookup(kind, r.platform)
	if err != nil {
		return "v1"
	}
	return v
}
