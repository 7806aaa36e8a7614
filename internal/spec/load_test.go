package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/transfigure/cli/internal/errors"
)

const influxTable = `
name = "influx.data"
image = "influxdb:<%= influx.version %>"
stateful = true
small = "container + 1"

[ports]
http = "8086"
udp = "8089.udp"

[probes]
ready = ":8086/ping"
live = "port:8086,initial=10"

[scale]
containers = 2
cpu = "> 50% < 1.25"
ram = "> 500Mi < 1Gi"

[storage]
data = "10Gi:exclusive"

[volumes]
config = "influx::influxdb.conf:0600"
`

func writeSpec(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSpec(t, t.TempDir(), "data/influx.toml", influxTable)

	table, err := Load(path, LoadOptions{Data: map[string]any{
		"influx": map[string]any{"version": "1.5"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "influx", table.Name)
	assert.Equal(t, "data", table.Namespace)
	assert.Equal(t, "influx.data", table.FQN())
	assert.Equal(t, "influxdb:1.5", table.Image)
	assert.True(t, table.Stateful)
	assert.Equal(t, "8089.udp", table.Ports["udp"])
	assert.Equal(t, ":8086/ping", table.Probes.Ready)
	assert.Equal(t, 2, table.Scale.Containers)
	assert.Equal(t, int32(2), table.Replicas())
	assert.Equal(t, "10Gi:exclusive", table.Storage["data"])
	assert.Equal(t, path, table.Path)

	tier, ok := table.StringKey("small")
	assert.True(t, ok)
	assert.Equal(t, "container + 1", tier)

	assert.Equal(t, int64(DefaultUnavailable), table.Deployment.Unavailable)
	assert.Equal(t, int64(DefaultSurge), table.Deployment.Surge)
	assert.Equal(t, int32(DefaultHistory), table.Deployment.History)
}

func TestLoadUnboundTokenFails(t *testing.T) {
	path := writeSpec(t, t.TempDir(), "data/influx.toml", influxTable)
	_, err := Load(path, LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestParseNameFromLocation(t *testing.T) {
	table, err := Parse(`image = "nginx:1.25"`, filepath.Join("specs", "web", "frontend.toml"))
	require.NoError(t, err)
	assert.Equal(t, "frontend", table.Name)
	assert.Equal(t, "web", table.Namespace)
	assert.Equal(t, "frontend", table.ServiceName())
}

func TestParseKeepsExplicitDeploymentSettings(t *testing.T) {
	table, err := Parse(`
name = "api.web"
[deployment]
unavailable = "25%"
history = 5
`, "api.toml")
	require.NoError(t, err)
	assert.Equal(t, "25%", table.Deployment.Unavailable)
	assert.Equal(t, int64(DefaultSurge), table.Deployment.Surge)
	assert.Equal(t, int32(5), table.Deployment.History)
}

func TestParseRejectsMalformedFields(t *testing.T) {
	tests := []struct {
		name  string
		table string
		field string
	}{
		{"storage", "name = \"a.b\"\n[storage]\ndata = \"10GB\"", "storage.data"},
		{"cpu", "name = \"a.b\"\n[scale]\ncpu = \"lots\"", "scale.cpu"},
		{"port", "name = \"a.b\"\n[ports]\nhttp = \"eighty\"", "ports.http"},
		{"restart", "name = \"a.b\"\n[deployment]\nrestart = \"Sometimes\"", "deployment.restart"},
		{"network", "name = \"a.b\"\n[[network.ingress]]\nfrom = [\"somewhere\"]", "network.ingress.0.from.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.table, "bad.toml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrValidation))

			var detail *oerrors.DetailError
			require.True(t, errors.As(err, &detail))
			assert.Equal(t, "bad.toml", detail.Location)
			assert.Equal(t, tt.field, detail.Field)
		})
	}
}

func TestParseRejectsInvalidTOML(t *testing.T) {
	_, err := Parse(`name = `, "bad.toml")
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestParseRejectsInvalidImage(t *testing.T) {
	_, err := Parse(`image = "UPPER/Case:tag:extra"`, "bad.toml")
	require.Error(t, err)
	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "image", detail.Field)
}
