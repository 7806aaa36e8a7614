package grammar

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var accessModes = map[string]corev1.PersistentVolumeAccessMode{
	"exclusive": corev1.ReadWriteOnce,
	"shared":    corev1.ReadWriteMany,
}

// Store parses `<size>:exclusive|shared` into a persistent volume claim.
// An unparseable size leaves the storage request unset.
func Store(name, expr, namespace string) corev1.PersistentVolumeClaim {
	size, access, _ := strings.Cut(strings.TrimSpace(expr), ":")
	claim := corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
	if mode, ok := accessModes[strings.TrimSpace(access)]; ok {
		claim.Spec.AccessModes = []corev1.PersistentVolumeAccessMode{mode}
	}
	if q, err := resource.ParseQuantity(strings.ReplaceAll(size, " ", "")); err == nil {
		claim.Spec.Resources.Requests = corev1.ResourceList{corev1.ResourceStorage: q}
	}
	return claim
}

// Stores parses a storage table, ordered by claim name.
func Stores(storage map[string]string, namespace string) []corev1.PersistentVolumeClaim {
	var out []corev1.PersistentVolumeClaim
	for _, name := range sortedKeys(storage) {
		out = append(out, Store(name, storage[name], namespace))
	}
	return out
}
