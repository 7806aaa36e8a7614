// Package weights provides apply ordering weights for Kubernetes objects.
// Objects with lower weights are applied first.
package weights

import (
	"sort"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Default weights for Kubernetes objects.
// Lower weights are applied first.
const (
	WeightNamespace          = 0
	WeightClusterRole        = 5
	WeightClusterRoleBinding = 5
	WeightServiceAccount     = 10
	WeightRole               = 10
	WeightRoleBinding        = 10
	WeightSecret             = 15
	WeightConfigMap          = 15
	WeightPersistentVolume   = 20
	WeightPVC                = 20
	WeightService            = 50
	WeightDeployment         = 100
	WeightStatefulSet        = 100
	WeightDaemonSet          = 100
	WeightJob                = 110
	WeightCronJob            = 110
	WeightIngress            = 150
	WeightNetworkPolicy      = 150
	WeightHPA                = 200
	WeightPDB                = 200
	WeightDefault            = 1000
)

// kindWeights maps Kind to weight. The group is ignored so that objects
// built for older platform versions order the same.
var kindWeights = map[string]int{
	"Namespace":               WeightNamespace,
	"ClusterRole":             WeightClusterRole,
	"ClusterRoleBinding":      WeightClusterRoleBinding,
	"ServiceAccount":          WeightServiceAccount,
	"Role":                    WeightRole,
	"RoleBinding":             WeightRoleBinding,
	"Secret":                  WeightSecret,
	"ConfigMap":               WeightConfigMap,
	"PersistentVolume":        WeightPersistentVolume,
	"PersistentVolumeClaim":   WeightPVC,
	"Service":                 WeightService,
	"Deployment":              WeightDeployment,
	"StatefulSet":             WeightStatefulSet,
	"DaemonSet":               WeightDaemonSet,
	"ReplicaSet":              WeightDeployment,
	"Job":                     WeightJob,
	"CronJob":                 WeightCronJob,
	"Ingress":                 WeightIngress,
	"NetworkPolicy":           WeightNetworkPolicy,
	"HorizontalPodAutoscaler": WeightHPA,
	"PodDisruptionBudget":     WeightPDB,
}

// GetWeight returns the weight for a GVK.
// Lower weights should be applied first.
func GetWeight(gvk schema.GroupVersionKind) int {
	if weight, ok := kindWeights[gvk.Kind]; ok {
		return weight
	}
	return WeightDefault
}

// SortForApply orders items by the weight of their GVK. Items of equal
// weight keep their relative order.
func SortForApply[T any](items []T, gvk func(T) schema.GroupVersionKind) {
	sort.SliceStable(items, func(i, j int) bool {
		return GetWeight(gvk(items[i])) < GetWeight(gvk(items[j]))
	})
}
