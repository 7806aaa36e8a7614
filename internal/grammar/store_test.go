package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

func TestStore(t *testing.T) {
	claim := Store("data", "10Gi:exclusive", "infra")
	assert.Equal(t, "data", claim.Name)
	assert.Equal(t, "infra", claim.Namespace)
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}, claim.Spec.AccessModes)
	q := claim.Spec.Resources.Requests[corev1.ResourceStorage]
	assert.Equal(t, 0, q.Cmp(resource.MustParse("10Gi")))

	shared := Store("logs", "2Gi:shared", "infra")
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany}, shared.Spec.AccessModes)
}

func TestStoresOrdered(t *testing.T) {
	claims := Stores(map[string]string{"logs": "1Gi:shared", "data": "5Gi:exclusive"}, "ns")
	assert.Equal(t, "data", claims[0].Name)
	assert.Equal(t, "logs", claims[1].Name)
}
