package resource

import (
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/spec"
)

// DefaultAccount is the subject bound to a role when no account is named.
const DefaultAccount = "default"

// security builds the service account, role and binding. A role written
// as `ClusterRole;name` is cluster scoped, `Role;name` or a bare name is
// namespaced. A role object is only created when rules are given;
// otherwise the binding references an existing role.
func (a *Assembler) security(t *spec.Table, d *Definition) {
	sec := t.Security
	if sec.Account != "" {
		d.Account = &corev1.ServiceAccount{
			TypeMeta:   a.typeMeta(apiversion.Account, "ServiceAccount"),
			ObjectMeta: objectMeta(t, sec.Account, true),
		}
	}
	if sec.Role == "" {
		return
	}

	cluster, roleName := roleParts(sec.Role)
	rules := policyRules(sec.Rules)
	account := sec.Account
	if account == "" {
		account = DefaultAccount
	}
	subjects := []rbacv1.Subject{{
		Kind:      rbacv1.ServiceAccountKind,
		Name:      account,
		Namespace: t.Namespace,
	}}
	roleVersion := a.typeMeta(apiversion.Role, "").APIVersion
	bindingVersion := a.typeMeta(apiversion.RoleBinding, "").APIVersion

	if cluster {
		if len(rules) > 0 {
			d.ClusterRole = &rbacv1.ClusterRole{
				TypeMeta:   metav1.TypeMeta{APIVersion: roleVersion, Kind: "ClusterRole"},
				ObjectMeta: objectMeta(t, roleName, false),
				Rules:      rules,
			}
		}
		d.ClusterRoleBinding = &rbacv1.ClusterRoleBinding{
			TypeMeta:   metav1.TypeMeta{APIVersion: bindingVersion, Kind: "ClusterRoleBinding"},
			ObjectMeta: objectMeta(t, account, false),
			RoleRef:    rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: "ClusterRole", Name: roleName},
			Subjects:   subjects,
		}
		return
	}

	if len(rules) > 0 {
		d.Role = &rbacv1.Role{
			TypeMeta:   metav1.TypeMeta{APIVersion: roleVersion, Kind: "Role"},
			ObjectMeta: objectMeta(t, roleName, true),
			Rules:      rules,
		}
	}
	d.RoleBinding = &rbacv1.RoleBinding{
		TypeMeta:   metav1.TypeMeta{APIVersion: bindingVersion, Kind: "RoleBinding"},
		ObjectMeta: objectMeta(t, account, true),
		RoleRef:    rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: "Role", Name: roleName},
		Subjects:   subjects,
	}
}

func policyRules(rules []spec.Rule) []rbacv1.PolicyRule {
	var out []rbacv1.PolicyRule
	for _, r := range rules {
		groups := r.Groups
		if len(groups) == 0 && len(r.NonResourceURLs) == 0 {
			groups = []string{""}
		}
		out = append(out, rbacv1.PolicyRule{
			APIGroups:       groups,
			Resources:       r.Resources,
			ResourceNames:   r.ResourceNames,
			Verbs:           r.Verbs,
			NonResourceURLs: r.NonResourceURLs,
		})
	}
	return out
}
