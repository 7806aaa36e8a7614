package apiversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		kind     Kind
		platform string
		want     string
	}{
		{Deployment, "1.5", "extensions/v1beta1"},
		{Deployment, "1.7", "apps/v1beta1"},
		{Deployment, "1.8", "apps/v1beta2"},
		{Deployment, "1.9", "apps/v1"},
		{Deployment, "1.30.2", "apps/v1"},
		{DaemonSet, "1.6", "extensions/v1beta1"},
		{StatefulSet, "1.8", "apps/v1beta2"},
		{CronJob, "1.7", "batch/v2alpha1"},
		{CronJob, "1.9", "batch/v1beta1"},
		{CronJob, "1.25", "batch/v1"},
		{Role, "1.7", "rbac.authorization.k8s.io/v1beta1"},
		{RoleBinding, "1.8", "rbac.authorization.k8s.io/v1"},
		{Job, "1.4", "batch/v1"},
		{NetworkPolicy, "1.9", "networking.k8s.io/v1"},
		{Service, "v1.9", "v1"},
		{Account, "", "v1"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"@"+tt.platform, func(t *testing.T) {
			got, err := Lookup(tt.kind, tt.platform)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	_, err := Lookup(Deployment, "latest")
	assert.Error(t, err)

	_, err = Lookup(Kind("widget"), "1.9")
	assert.Error(t, err)
}

func TestResolver(t *testing.T) {
	_, err := NewResolver("not-a-version")
	require.Error(t, err)

	r, err := NewResolver("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPlatform, r.Platform())
	assert.Equal(t, "apps/v1", r.Version(StatefulSet))
}
