package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImage(t *testing.T) {
	tests := []struct {
		ref  string
		want ImageRef
	}{
		{"nginx:1.25", ImageRef{DefaultRegistry, DefaultGroup, "nginx:1.25"}},
		{"arobson/hikinator:latest", ImageRef{DefaultRegistry, "arobson", "hikinator:latest"}},
		{"quay.io/coreos/etcd:v3.5", ImageRef{"quay.io", "coreos", "etcd:v3.5"}},
		{"registry.local:5000/team/sub/app:1", ImageRef{"registry.local:5000/team", "sub", "app:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, Image(tt.ref))
		})
	}
}

func TestImageRepositoryAndTag(t *testing.T) {
	img := Image("quay.io/coreos/etcd:v3.5")
	assert.Equal(t, "etcd", img.Repository())
	assert.Equal(t, "v3.5", img.Tag())
	assert.Equal(t, "latest", Image("nginx").Tag())
}
