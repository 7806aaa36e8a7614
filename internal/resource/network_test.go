package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/transfigure/cli/internal/spec"
)

func TestBuildNetworkPolicy(t *testing.T) {
	tbl := webTable()
	tbl.Network = &spec.Network{
		Selector: "app:web",
		Ingress: []spec.NetworkRule{{
			From:  []string{"namespace=team:shop", "10.0.0.0/16 ! 10.0.5.0/24"},
			Ports: []any{int64(8080), "53.udp"},
		}},
		Egress: []spec.NetworkRule{{To: []string{"pod=app:db"}}},
	}
	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)

	np := d.NetworkPolicy
	require.NotNil(t, np)
	assert.Equal(t, "networking.k8s.io/v1", np.APIVersion)
	assert.Equal(t, map[string]string{"app": "web"}, np.Spec.PodSelector.MatchLabels)
	assert.Equal(t, []networkingv1.PolicyType{networkingv1.PolicyTypeIngress, networkingv1.PolicyTypeEgress}, np.Spec.PolicyTypes)

	require.Len(t, np.Spec.Ingress, 1)
	from := np.Spec.Ingress[0].From
	require.Len(t, from, 2)
	assert.Equal(t, &metav1.LabelSelector{MatchLabels: map[string]string{"team": "shop"}}, from[0].NamespaceSelector)
	assert.Equal(t, []string{"10.0.5.0/24"}, from[1].IPBlock.Except)

	ports := np.Spec.Ingress[0].Ports
	require.Len(t, ports, 2)
	assert.Equal(t, int32(8080), ports[0].Port.IntVal)
	assert.Equal(t, corev1.ProtocolUDP, *ports[1].Protocol)

	require.Len(t, np.Spec.Egress, 1)
	assert.Equal(t, map[string]string{"app": "db"}, np.Spec.Egress[0].To[0].PodSelector.MatchLabels)
}

func TestBuildNetworkPolicyEmptySelector(t *testing.T) {
	tbl := webTable()
	tbl.Network = &spec.Network{Egress: []spec.NetworkRule{{To: []string{"0.0.0.0/0"}}}}
	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)
	assert.Nil(t, d.NetworkPolicy.Spec.PodSelector.MatchLabels)
	assert.Equal(t, []networkingv1.PolicyType{networkingv1.PolicyTypeEgress}, d.NetworkPolicy.Spec.PolicyTypes)
}
