package resource

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/spec"
	"github.com/transfigure/cli/internal/units"
)

type recordingSink struct {
	files []ConfigFile
}

func (r *recordingSink) AddConfigFile(f ConfigFile) error {
	r.files = append(r.files, f)
	return nil
}

type secretSet map[string]bool

func (s secretSet) HasSecret(namespace, name string) bool {
	return s[namespace+"/"+name]
}

func newAssembler(t *testing.T, platform string) *Assembler {
	t.Helper()
	versions, err := apiversion.NewResolver(platform)
	require.NoError(t, err)
	return &Assembler{Versions: versions, Proxy: NewProxyTemplates()}
}

func webTable() *spec.Table {
	return &spec.Table{
		Name:      "web",
		Namespace: "shop",
		Image:     "registry.example.com/shop/web:1.2.0",
		Ports:     map[string]any{"http": "8080"},
		Scale:     spec.Scale{Containers: 3},
		Deployment: spec.Deployment{
			Unavailable: int64(1),
			Surge:       "25%",
			History:     2,
		},
		Resources: units.Requirements{
			Requests: map[string]string{"cpu": "250m", "memory": "256Mi"},
			Limits:   map[string]string{"cpu": "500m"},
		},
		Labels:   "tier=frontend",
		Metadata: "owner=team-a",
	}
}

func TestBuildDeployment(t *testing.T) {
	a := newAssembler(t, "1.9")
	d, err := a.Build(webTable())
	require.NoError(t, err)

	require.NotNil(t, d.Deployment)
	assert.Equal(t, "Deployment", d.Controller())
	assert.Equal(t, "web.shop", d.FQN)

	dep := d.Deployment
	assert.Equal(t, "apps/v1", dep.APIVersion)
	assert.Equal(t, "Deployment", dep.Kind)
	assert.Equal(t, int32(3), *dep.Spec.Replicas)
	assert.Equal(t, int32(2), *dep.Spec.RevisionHistoryLimit)
	assert.Equal(t, intstr.FromInt32(1), *dep.Spec.Strategy.RollingUpdate.MaxUnavailable)
	assert.Equal(t, intstr.FromString("25%"), *dep.Spec.Strategy.RollingUpdate.MaxSurge)
	assert.Equal(t, map[string]string{"app": "web"}, dep.Spec.Selector.MatchLabels)
	assert.Equal(t, "frontend", dep.Labels["tier"])
	assert.Equal(t, "shop", dep.Labels["namespace"])
	assert.Equal(t, map[string]string{"owner": "team-a"}, dep.Annotations)

	pod := dep.Spec.Template
	assert.Equal(t, "web", pod.Labels["app"])
	assert.Equal(t, "frontend", pod.Labels["tier"])

	c := pod.Spec.Containers[0]
	assert.Equal(t, "registry.example.com/shop/web:1.2.0", c.Image)
	assert.Equal(t, "250m", c.Resources.Requests.Cpu().String())
	assert.Equal(t, "256Mi", c.Resources.Requests.Memory().String())
	assert.Equal(t, "500m", c.Resources.Limits.Cpu().String())
	require.Len(t, c.Ports, 1)
	assert.Equal(t, int32(8080), c.Ports[0].ContainerPort)

	require.Len(t, d.Services, 1)
	svc := d.Services[0]
	assert.Equal(t, "v1", svc.APIVersion)
	assert.Equal(t, map[string]string{"app": "web"}, svc.Spec.Selector)
	assert.Equal(t, int32(8080), svc.Spec.Ports[0].Port)
}

func TestBuildOldPlatformVersions(t *testing.T) {
	a := newAssembler(t, "1.7")
	tbl := webTable()
	d, err := a.Build(tbl)
	require.NoError(t, err)
	assert.Equal(t, "apps/v1beta1", d.Deployment.APIVersion)
}

func TestBuildControllerPriority(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*spec.Table)
		want   string
	}{
		{"image only", func(*spec.Table) {}, "Deployment"},
		{"stateful", func(t *spec.Table) { t.Stateful = true }, "StatefulSet"},
		{"daemon", func(t *spec.Table) { t.Daemon = true }, "DaemonSet"},
		{"stateful beats daemon", func(t *spec.Table) { t.Stateful, t.Daemon = true, true }, "StatefulSet"},
		{"job beats stateful", func(t *spec.Table) { t.Job, t.Stateful = true, true }, "Job"},
		{"scheduled job", func(t *spec.Table) { t.Job = true; t.Deployment.Schedule = "*/5 * * * *" }, "CronJob"},
		{"no image", func(t *spec.Table) { t.Image = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := webTable()
			tt.modify(tbl)
			d, err := newAssembler(t, "").Build(tbl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Controller())
		})
	}
}

func TestBuildStatefulSetWithAlias(t *testing.T) {
	tbl := webTable()
	tbl.Stateful = true
	tbl.Service.Alias = "web-cluster"
	tbl.Storage = map[string]string{"data": "10Gi:exclusive"}

	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)

	ss := d.StatefulSet
	require.NotNil(t, ss)
	assert.Equal(t, "web-cluster", ss.Spec.ServiceName)
	assert.Equal(t, appsv1.RollingUpdateStatefulSetStrategyType, ss.Spec.UpdateStrategy.Type)
	require.Len(t, ss.Spec.VolumeClaimTemplates, 1)
	assert.Equal(t, "10Gi", ss.Spec.VolumeClaimTemplates[0].Spec.Resources.Requests.Storage().String())
	assert.Empty(t, d.Claims)

	require.Len(t, d.Services, 2)
	headless, exposed := d.Services[0], d.Services[1]
	assert.Equal(t, "web-cluster", headless.Name)
	assert.Equal(t, corev1.ClusterIPNone, headless.Spec.ClusterIP)
	assert.Equal(t, "web", exposed.Name)
	assert.Empty(t, exposed.Spec.ClusterIP)
	assert.Equal(t, map[string]string{"app": "web"}, headless.Spec.Selector)
	assert.Equal(t, map[string]string{"app": "web"}, exposed.Spec.Selector)
	assert.Equal(t, "web", ss.Spec.Template.Labels["app"])
}

func TestBuildStatefulSetWithoutAliasIsHeadless(t *testing.T) {
	tbl := webTable()
	tbl.Stateful = true
	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)
	require.Len(t, d.Services, 1)
	assert.Equal(t, corev1.ClusterIPNone, d.Services[0].Spec.ClusterIP)
	assert.Equal(t, "web", d.StatefulSet.Spec.ServiceName)
}

func TestBuildServiceTypes(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*spec.Table)
		wantType   corev1.ServiceType
		wantPolicy corev1.ServiceExternalTrafficPolicy
	}{
		{"cluster ip", func(*spec.Table) {}, "", ""},
		{"node port", func(t *spec.Table) { t.Ports["http"] = "8080=>30080" }, corev1.ServiceTypeNodePort, ""},
		{"load balancer", func(t *spec.Table) { t.Service.LoadBalance = true }, corev1.ServiceTypeLoadBalancer, ""},
		{"load balancer policy", func(t *spec.Table) { t.Service.LoadBalance = "Local" }, corev1.ServiceTypeLoadBalancer, corev1.ServiceExternalTrafficPolicyLocal},
		{"external name", func(t *spec.Table) { t.Service.ExternalName = "db.example.com" }, corev1.ServiceTypeExternalName, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := webTable()
			tt.modify(tbl)
			d, err := newAssembler(t, "").Build(tbl)
			require.NoError(t, err)
			svc := d.Services[0]
			assert.Equal(t, tt.wantType, svc.Spec.Type)
			assert.Equal(t, tt.wantPolicy, svc.Spec.ExternalTrafficPolicy)
		})
	}
}

func TestBuildServiceAffinityAndLabels(t *testing.T) {
	tbl := webTable()
	tbl.Service.Affinity = true
	tbl.Service.Labels = "expose=true"
	tbl.Service.Annotations = "prometheus.io/scrape=true"
	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)
	svc := d.Services[0]
	assert.Equal(t, corev1.ServiceAffinityClientIP, svc.Spec.SessionAffinity)
	assert.Equal(t, "true", svc.Labels["expose"])
	assert.Equal(t, "true", svc.Annotations["prometheus.io/scrape"])
	assert.Equal(t, "team-a", svc.Annotations["owner"])
}

func TestBuildJob(t *testing.T) {
	tbl := webTable()
	tbl.Job = true
	tbl.Deployment.TimeLimit = 600
	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)

	job := d.Job
	require.NotNil(t, job)
	assert.Equal(t, "batch/v1", job.APIVersion)
	assert.Equal(t, int32(3), *job.Spec.Parallelism)
	assert.Equal(t, int32(3), *job.Spec.Completions)
	assert.Equal(t, DefaultBackoffLimit, *job.Spec.BackoffLimit)
	assert.Equal(t, int64(600), *job.Spec.ActiveDeadlineSeconds)
	assert.Equal(t, corev1.RestartPolicyNever, job.Spec.Template.Spec.RestartPolicy)
}

func TestBuildCronJobConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		containers  int
		completions int32
		want        batchv1.ConcurrencyPolicy
	}{
		{"parallel containers", 3, 0, batchv1.AllowConcurrent},
		{"single completion", 1, 1, batchv1.ForbidConcurrent},
		{"multiple completions", 1, 4, batchv1.ReplaceConcurrent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := webTable()
			tbl.Job = true
			tbl.Scale.Containers = tt.containers
			tbl.Deployment.Completions = tt.completions
			tbl.Deployment.Schedule = "0 * * * *"
			tbl.Deployment.TimeLimit = 120
			tbl.Deployment.Restart = "OnFailure"

			d, err := newAssembler(t, "1.9").Build(tbl)
			require.NoError(t, err)
			cj := d.CronJob
			require.NotNil(t, cj)
			assert.Equal(t, "batch/v1beta1", cj.APIVersion)
			assert.Equal(t, tt.want, cj.Spec.ConcurrencyPolicy)
			assert.Equal(t, int64(120), *cj.Spec.StartingDeadlineSeconds)
			assert.Equal(t, int32(2), *cj.Spec.SuccessfulJobsHistoryLimit)
			assert.Equal(t, corev1.RestartPolicyOnFailure, cj.Spec.JobTemplate.Spec.Template.Spec.RestartPolicy)
			assert.Nil(t, cj.Spec.JobTemplate.Spec.ActiveDeadlineSeconds)
		})
	}
}

func TestBuildStandaloneClaims(t *testing.T) {
	tbl := webTable()
	tbl.Storage = map[string]string{"cache": "1Gi:shared"}
	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)

	require.Len(t, d.Claims, 1)
	assert.Equal(t, "PersistentVolumeClaim", d.Claims[0].Kind)
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany}, d.Claims[0].Spec.AccessModes)

	vols := d.Deployment.Spec.Template.Spec.Volumes
	require.Len(t, vols, 1)
	assert.Equal(t, "cache", vols[0].PersistentVolumeClaim.ClaimName)
}

func TestBuildContainerDetails(t *testing.T) {
	tbl := webTable()
	tbl.Env = map[string]any{
		"LOG_LEVEL": "debug",
		"creds":     map[string]any{"DB_PASSWORD": "password"},
		"settings":  map[string]any{"FEATURE": "feature"},
	}
	tbl.Mounts = map[string]string{"config": "/etc/web", "certs": "/etc/certs"}
	tbl.Probes = spec.Probes{Ready: ":8080/health", Live: "port:8080"}
	tbl.Deployment.Pull = "Always"
	tbl.Command = "web serve"
	tbl.ImagePullSecret = "registry"
	tbl.Security = &spec.Security{
		Context:      "user=1000;group=2000",
		Privileged:   true,
		Capabilities: &spec.Capabilities{Add: []string{"NET_ADMIN"}},
	}

	a := newAssembler(t, "")
	a.Secrets = secretSet{"shop/creds": true}
	d, err := a.Build(tbl)
	require.NoError(t, err)

	ps := d.Deployment.Spec.Template.Spec
	c := ps.Containers[0]
	assert.Equal(t, []string{"web", "serve"}, c.Command)
	assert.Equal(t, corev1.PullAlways, c.ImagePullPolicy)
	assert.Equal(t, "/health", c.ReadinessProbe.HTTPGet.Path)
	assert.NotNil(t, c.LivenessProbe.TCPSocket)

	require.Len(t, c.Env, 3)
	assert.Equal(t, "LOG_LEVEL", c.Env[0].Name)
	assert.Equal(t, "creds", c.Env[1].ValueFrom.SecretKeyRef.Name)
	assert.Equal(t, "settings", c.Env[2].ValueFrom.ConfigMapKeyRef.Name)

	require.Len(t, c.VolumeMounts, 2)
	assert.Equal(t, "certs", c.VolumeMounts[0].Name)

	require.NotNil(t, c.SecurityContext)
	assert.True(t, *c.SecurityContext.Privileged)
	assert.Nil(t, c.SecurityContext.AllowPrivilegeEscalation)
	assert.Equal(t, int64(1000), *c.SecurityContext.RunAsUser)
	assert.Equal(t, []corev1.Capability{"NET_ADMIN"}, c.SecurityContext.Capabilities.Add)
	assert.Equal(t, int64(2000), *ps.SecurityContext.FSGroup)
	assert.Equal(t, "registry", ps.ImagePullSecrets[0].Name)
}

func TestBuildRegistersConfigFiles(t *testing.T) {
	dir := t.TempDir()
	tbl := webTable()
	tbl.Path = filepath.Join(dir, "web.toml")
	tbl.Volumes = map[string]string{
		"config": "web-config::app.yml,nginx.conf=default.conf:0600",
		"certs":  "secret::tls",
	}

	sink := &recordingSink{}
	a := newAssembler(t, "")
	a.Config = sink
	d, err := a.Build(tbl)
	require.NoError(t, err)

	require.Len(t, sink.files, 2)
	assert.Equal(t, ConfigFile{Namespace: "shop", Map: "web-config", Key: "app.yml", Source: filepath.Join(dir, "app.yml")}, sink.files[0])
	assert.Equal(t, "nginx.conf", sink.files[1].Key)

	vols := d.Deployment.Spec.Template.Spec.Volumes
	require.Len(t, vols, 2)
	assert.Equal(t, "tls", vols[0].Secret.SecretName)
	assert.Equal(t, "web-config", vols[1].ConfigMap.Name)
}

func TestBuildRequiresResolver(t *testing.T) {
	_, err := (&Assembler{}).Build(webTable())
	assert.Error(t, err)
}

func TestObjectsOrder(t *testing.T) {
	tbl := webTable()
	tbl.Security = &spec.Security{Account: "web", Role: "Role;reader", Rules: []spec.Rule{{Resources: []string{"pods"}, Verbs: []string{"get"}}}}
	tbl.Network = &spec.Network{Selector: "app:web", Ingress: []spec.NetworkRule{{From: []string{"pod=app:gateway"}}}}

	d, err := newAssembler(t, "").Build(tbl)
	require.NoError(t, err)

	var kinds []string
	for _, obj := range d.Objects() {
		kinds = append(kinds, obj.Kind)
	}
	assert.Equal(t, []string{"account", "role", "roleBinding", "service", "deployment", "networkPolicy"}, kinds)
}

func TestLowerFirst(t *testing.T) {
	assert.Equal(t, "configMap", lowerFirst("ConfigMap"))
	assert.Equal(t, "", lowerFirst(""))
	assert.Equal(t, "ingress", lowerFirst("ingress"))
}

func TestObjectsOrderClusterRoleFirst(t *testing.T) {
	d := &Definition{
		Deployment:         &appsv1.Deployment{TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"}},
		Account:            &corev1.ServiceAccount{TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"}},
		ClusterRole:        &rbacv1.ClusterRole{TypeMeta: metav1.TypeMeta{APIVersion: "rbac.authorization.k8s.io/v1", Kind: "ClusterRole"}},
		ClusterRoleBinding: &rbacv1.ClusterRoleBinding{TypeMeta: metav1.TypeMeta{APIVersion: "rbac.authorization.k8s.io/v1", Kind: "ClusterRoleBinding"}},
	}

	var kinds []string
	for _, obj := range d.Objects() {
		kinds = append(kinds, obj.Kind)
	}
	assert.Equal(t, []string{"clusterRole", "clusterRoleBinding", "account", "deployment"}, kinds)
}
