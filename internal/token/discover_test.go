package token

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/testutil"
)

func TestDiscoverFollowsMountedFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "cluster.toml"), `
scaleOrder = "small, medium"
[infra]
  [infra.nginx]
  order = 1
`)
	testutil.WriteFile(t, filepath.Join(root, "infra", "nginx.toml"), `
name = "nginx.infra"
image = "nginx:<%= nginx.version %>"

[volumes]
config = "nginx::nginx.conf,<%= cert.file %>:0600"
`)
	testutil.WriteFile(t, filepath.Join(root, "infra", "nginx.conf"), `
server_name <%= domain %>;
$SERVER_DEFINITIONS$
`)
	testutil.WriteFile(t, filepath.Join(root, "infra", "app.raw.yml"), `
kind: ConfigMap
metadata:
  name: <%= app.name %>
`)
	testutil.WriteFile(t, filepath.Join(root, ".git", "ignored.toml"), `name = "<%= ignored %>"`)

	tokens, err := Discover(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.name", "nginx.version", "cert.file", "domain"}, tokens)
}

func TestDiscoverNoTokens(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "svc.toml"), `name = "svc.default"`)

	tokens, err := Discover(root)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestDiscoverInvalidTable(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "broken.toml"), `name = `)

	_, err := Discover(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestSourceFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "b.toml"), "")
	testutil.WriteFile(t, filepath.Join(root, "a", "x.raw.yaml"), "")
	testutil.WriteFile(t, filepath.Join(root, "a", "notes.md"), "")

	files, err := SourceFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "x.raw.yaml"),
		filepath.Join(root, "b.toml"),
	}, files)
}
