package cluster

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/resource"
	"github.com/transfigure/cli/internal/testutil"
)

const clusterToml = `
scaleOrder = "small, large"

[shop.web]
order = 1
large = "container * 3; cpu > 1 < 2"

[shop.proxy]
order = 0

[configuration.shop.settings]
mode = "<%= mode %>"

[secret.shop.creds]
password = "c2VjcmV0"
token = "plain value!"

[imagePullSecret.registry]
registry = "registry.example.com"
username = "bot"
password = "hunter2"
repositories = ["shop/web"]
`

const webToml = `
image = "registry.example.com/shop/web:1.0"

[ports]
http = "8080"

[service]
subdomain = "shop"

[env.creds]
DB_PASSWORD = "password"
`

const proxyToml = `
image = "nginx:1.25"

[ports]
https = "443"

[volumes]
conf = "proxy-config::nginx.conf"

[mounts]
conf = "/etc/nginx"
`

const nginxConf = `events {}
http {
$SERVER_DEFINITIONS$
}
`

func shopTree(t *testing.T) string {
	return testutil.WriteTree(t, map[string]string{
		File:              clusterToml,
		"shop/web.toml":   webToml,
		"shop/proxy.toml": proxyToml,
		"shop/nginx.conf": nginxConf,
	})
}

func resolve(t *testing.T, root string, opts Options) *Model {
	t.Helper()
	m, err := Load(root, opts)
	require.NoError(t, err)
	require.NoError(t, m.Assemble(context.Background()))
	require.NoError(t, m.Finalize())
	return m
}

func shopOptions() Options {
	return Options{Data: map[string]any{"mode": "fast"}, Scale: "large"}
}

func TestLoadClusterConfiguration(t *testing.T) {
	m, err := Load(shopTree(t), shopOptions())
	require.NoError(t, err)

	assert.Equal(t, "1.9", m.APIVersion)
	assert.Equal(t, []string{"small", "large"}, m.ScaleOrder)
	assert.Equal(t, []string{"shop"}, m.Namespaces)
	assert.Equal(t, []int{0, 1}, m.Levels)
	assert.Equal(t, map[int][]string{0: {"proxy.shop"}, 1: {"web.shop"}}, m.Order)
	assert.Equal(t, "container * 3; cpu > 1 < 2", m.Entries["web.shop"].Tiers["large"])

	cm, ok := m.ConfigMap("shop", "settings")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"mode": "fast"}, cm.Data)
	assert.Equal(t, "v1", cm.APIVersion)

	require.Len(t, m.Secrets, 1)
	creds := m.Secrets[0]
	assert.Equal(t, corev1.SecretTypeOpaque, creds.Type)
	assert.Equal(t, []byte("secret"), creds.Data["password"])
	assert.Equal(t, "plain value!", creds.StringData["token"])
	assert.True(t, m.HasSecret("shop", "creds"))
	assert.False(t, m.HasSecret("other", "creds"))

	pull := m.ImagePullSecrets["shop"]["registry.example.com"]
	require.NotNil(t, pull)
	assert.Equal(t, corev1.SecretTypeDockerConfigJson, pull.Type)
	auth := base64.StdEncoding.EncodeToString([]byte("bot:hunter2"))
	assert.JSONEq(t, `{"auths":{"registry.example.com":{"auth":"`+auth+`"}}}`, string(pull.Data[corev1.DockerConfigJsonKey]))
	assert.Equal(t, "shop/web", pull.Annotations[RepositoriesAnnotation])
}

func TestLoadWithoutClusterFile(t *testing.T) {
	m, err := Load(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, m.Namespaces)
	assert.Empty(t, m.Levels)
}

func TestLoadInvalidOrder(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{File: "[shop.web]\norder = \"first\"\n"})
	_, err := Load(root, Options{})
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestLoadInvalidPlatform(t *testing.T) {
	_, err := Load(t.TempDir(), Options{APIVersion: "not-a-version"})
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestAssembleAndFinalize(t *testing.T) {
	m := resolve(t, shopTree(t), shopOptions())

	assert.Equal(t, []string{"proxy.shop", "web.shop"}, m.FQNs())

	web := m.Resources["web.shop"]
	require.NotNil(t, web.Deployment)
	assert.Equal(t, 1, web.Level)
	assert.Equal(t, int32(3), *web.Deployment.Spec.Replicas)
	c := web.Deployment.Spec.Template.Spec.Containers[0]
	assert.Equal(t, int64(1000), c.Resources.Requests.Cpu().MilliValue())
	assert.Equal(t, int64(2000), c.Resources.Limits.Cpu().MilliValue())
	require.Len(t, c.Env, 1)
	assert.Equal(t, "creds", c.Env[0].ValueFrom.SecretKeyRef.Name)

	proxy := m.Resources["proxy.shop"]
	assert.Equal(t, int32(1), *proxy.Deployment.Spec.Replicas)

	cm, ok := m.ConfigMap("shop", "proxy-config")
	require.True(t, ok)
	conf := cm.Data["nginx.conf"]
	assert.NotContains(t, conf, SplicePlaceholder)
	assert.Contains(t, conf, "server_name   ~^shop[.].*$;")
	assert.Contains(t, conf, "web.shop.svc.cluster.local:8080")
	assert.Equal(t, conf, m.ProxyConfig())
	assert.True(t, m.Finalized())
}

func TestFinalizeRunsOnce(t *testing.T) {
	m := resolve(t, shopTree(t), shopOptions())
	assert.ErrorIs(t, m.Finalize(), ErrFinalized)
	assert.ErrorIs(t, m.Add(&resource.Definition{FQN: "late.shop"}), ErrFinalized)
	assert.ErrorIs(t, m.Assemble(context.Background()), ErrFinalized)
}

func TestFinalizeSplicesInFQNOrder(t *testing.T) {
	m, err := Load(t.TempDir(), Options{})
	require.NoError(t, err)

	cm := m.configMap("edge", "proxy")
	cm.Data[ProxyConfigKey] = `a\"b` + "\n" + SplicePlaceholder
	m.splice = &spliceTarget{configMap: cm, key: ProxyConfigKey}

	require.NoError(t, m.Add(&resource.Definition{FQN: "zeta.edge", Namespace: "edge", ProxyBlock: "zeta"}))
	require.NoError(t, m.Add(&resource.Definition{FQN: "alpha.edge", Namespace: "edge", ProxyBlock: `alpha\n"x"`}))
	require.NoError(t, m.Finalize())

	assert.Equal(t, "a\"b\nalpha\n\"x\"\n\nzeta", m.ProxyConfig())
}

func TestFinalizeWithoutTarget(t *testing.T) {
	m, err := Load(t.TempDir(), Options{})
	require.NoError(t, err)
	require.NoError(t, m.Add(&resource.Definition{FQN: "web.shop", Namespace: "shop", ProxyBlock: "block"}))
	require.NoError(t, m.Finalize())
	assert.Empty(t, m.ProxyConfig())
}

func TestAddRejectsDuplicateFQN(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"shop/web.toml":   webToml,
		"shop/other.toml": "name = \"web\"\nimage = \"nginx:1.25\"\n",
	})
	m, err := Load(root, Options{})
	require.NoError(t, err)
	err = m.Assemble(context.Background())
	assert.ErrorIs(t, err, oerrors.ErrValidation)
	assert.Contains(t, err.Error(), "web.shop")
}

func TestAddRegistersNamespaceAndLevel(t *testing.T) {
	m, err := Load(t.TempDir(), Options{})
	require.NoError(t, err)
	require.NoError(t, m.Add(&resource.Definition{FQN: "b.ops", Namespace: "ops", Level: 2}))
	require.NoError(t, m.Add(&resource.Definition{FQN: "a.apps", Namespace: "apps"}))

	assert.Equal(t, []string{"apps", "ops"}, m.Namespaces)
	assert.Equal(t, []int{0, 2}, m.Levels)
	assert.Equal(t, []string{"a.apps", "b.ops"}, m.FQNs())
}

func TestAssembleSkipsMountedSpecLookalikes(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"tools/agent.toml": "image = \"agent:1\"\n[volumes]\nconf = \"agent-config::telegraf.toml\"\n",
		// mounted content, not a workload
		"tools/telegraf.toml": "[agent]\ninterval = \"10s\"\nports = \"none\"\n",
	})
	m, err := Load(root, Options{})
	require.NoError(t, err)
	require.NoError(t, m.Assemble(context.Background()))

	assert.Equal(t, []string{"agent.tools"}, m.FQNs())
	cm, ok := m.ConfigMap("tools", "agent-config")
	require.True(t, ok)
	assert.Contains(t, cm.Data["telegraf.toml"], "interval")
}

func TestAssembleMissingMountedFile(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"tools/agent.toml": "image = \"agent:1\"\n[volumes]\nconf = \"agent-config::missing.conf\"\n",
	})
	m, err := Load(root, Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Assemble(context.Background()), oerrors.ErrNotFound)
}

func TestAssembleRawFiles(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"edge/gateway.raw.yml": "apiVersion: networking.k8s.io/v1\nkind: Ingress\nmetadata:\n  name: gateway\n  namespace: edge\n",
	})
	m := resolve(t, root, Options{})
	require.Contains(t, m.Resources, "gateway.edge")
	assert.Equal(t, "Ingress", m.Resources["gateway.edge"].Controller())
}

func TestAssembleHonoursCancellation(t *testing.T) {
	m, err := Load(shopTree(t), shopOptions())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Assemble(ctx), context.Canceled)
}

func TestDocumentsLayout(t *testing.T) {
	m := resolve(t, shopTree(t), shopOptions())

	files, err := output.Render(m.Documents())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"cluster.yml",
		"nginx.conf",
		"shop/config/proxy-config.yml",
		"shop/config/settings.yml",
		"shop/proxy/deployment.yml",
		"shop/proxy/service.yml",
		"shop/secret/creds.yml",
		"shop/secret/registry.yml",
		"shop/web/deployment.yml",
		"shop/web/nginx.conf",
		"shop/web/service.yml",
	}, files.Paths())

	for _, f := range files {
		assert.NotContains(t, string(f.Content), "creationTimestamp", f.Path)
	}
}

func TestWriteThenDiffIsClean(t *testing.T) {
	m := resolve(t, shopTree(t), shopOptions())
	files, err := output.Render(m.Documents())
	require.NoError(t, err)

	target := t.TempDir()
	results, err := output.Write(target, files)
	require.NoError(t, err)
	require.Len(t, results, len(files))
	assert.Equal(t, output.StatusCreated, results[0].Status)

	diff, err := output.Diff(target, files, false)
	require.NoError(t, err)
	assert.True(t, diff.IsEmpty())
}

func TestSummary(t *testing.T) {
	m := resolve(t, shopTree(t), shopOptions())
	s := m.Summary()
	assert.Equal(t, "large", s.Scale)
	require.Len(t, s.Workloads, 2)
	assert.Equal(t, output.WorkloadSummary{
		FQN: "web.shop", Namespace: "shop", Level: 1, Controller: "Deployment",
		Replicas: 3, Services: 1, Proxy: true,
	}, s.Workloads[1])
	assert.Equal(t, "shop/proxy-config", s.ProxyConfig)
	assert.Equal(t, []string{"shop/settings", "shop/proxy-config"}, s.ConfigMaps)
}
