package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transfigure/cli/internal/testutil"
)

// isolate points configuration lookups at an empty temp directory and
// clears the environment the CLI reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TRANSFIGURE_CONFIG", filepath.Join(dir, "config.yaml"))
	for _, name := range []string{
		"TRANSFIGURE_API_VERSION",
		"TRANSFIGURE_GIT_BASE_PATH",
		"GIT_BASE_PATH",
		"TRANSFIGURE_SCALE",
		"TRANSFIGURE_TOKEN_FILE",
		"TRANSFIGURE_BRANCH",
		"TRANSFIGURE_LOG_TIMESTAMPS",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func tokenTree(t *testing.T) string {
	return testutil.WriteTree(t, map[string]string{
		"cluster.toml": "[shop.web]\norder = 1\n",
		"shop/web.toml": `image = "registry.example.com/shop/web:<%= web.version %>"

[ports]
http = "8080"

[env]
MODE = "<%= mode %>"
`,
	})
}

func tokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
