// Package resource assembles the Kubernetes objects for one workload.
package resource

import (
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/transfigure/cli/pkg/weights"
)

// Definition holds every object built for one fully qualified name.
type Definition struct {
	FQN       string
	Name      string
	Namespace string

	// Level orders the definition among the cluster's resources.
	Level int

	Services           []*corev1.Service
	Deployment         *appsv1.Deployment
	StatefulSet        *appsv1.StatefulSet
	DaemonSet          *appsv1.DaemonSet
	Job                *batchv1.Job
	CronJob            *batchv1.CronJob
	Claims             []*corev1.PersistentVolumeClaim
	Account            *corev1.ServiceAccount
	Role               *rbacv1.Role
	ClusterRole        *rbacv1.ClusterRole
	RoleBinding        *rbacv1.RoleBinding
	ClusterRoleBinding *rbacv1.ClusterRoleBinding
	NetworkPolicy      *networkingv1.NetworkPolicy
	Raw                *unstructured.Unstructured

	// ProxyBlock is the reverse proxy location block waiting to be spliced
	// into the shared proxy configuration.
	ProxyBlock string
}

// Object is one built object with the name of the file kind it is
// written as.
type Object struct {
	Kind   string
	Object runtime.Object
}

// Objects lists the built objects grouped by kind, in apply order.
func (d *Definition) Objects() []Object {
	var out []Object
	add := func(kind string, obj runtime.Object, present bool) {
		if present {
			out = append(out, Object{Kind: kind, Object: obj})
		}
	}
	add("account", d.Account, d.Account != nil)
	add("role", d.Role, d.Role != nil)
	add("clusterRole", d.ClusterRole, d.ClusterRole != nil)
	add("roleBinding", d.RoleBinding, d.RoleBinding != nil)
	add("clusterRoleBinding", d.ClusterRoleBinding, d.ClusterRoleBinding != nil)
	for _, claim := range d.Claims {
		add("volumeClaim", claim, true)
	}
	for _, svc := range d.Services {
		add("service", svc, true)
	}
	add("deployment", d.Deployment, d.Deployment != nil)
	add("statefulSet", d.StatefulSet, d.StatefulSet != nil)
	add("daemonSet", d.DaemonSet, d.DaemonSet != nil)
	add("job", d.Job, d.Job != nil)
	add("cronJob", d.CronJob, d.CronJob != nil)
	add("networkPolicy", d.NetworkPolicy, d.NetworkPolicy != nil)
	if d.Raw != nil {
		add(lowerFirst(d.Raw.GetKind()), d.Raw, true)
	}
	weights.SortForApply(out, func(o Object) schema.GroupVersionKind {
		return o.Object.GetObjectKind().GroupVersionKind()
	})
	return out
}

// Controller returns the workload controller kind, or "" when the
// definition has none.
func (d *Definition) Controller() string {
	switch {
	case d.Deployment != nil:
		return "Deployment"
	case d.StatefulSet != nil:
		return "StatefulSet"
	case d.DaemonSet != nil:
		return "DaemonSet"
	case d.Job != nil:
		return "Job"
	case d.CronJob != nil:
		return "CronJob"
	case d.Raw != nil:
		return d.Raw.GetKind()
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
