package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/transfigure/cli/internal/errors"
)

func TestLoadTokenFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
	}{
		{
			name:    "nested yaml",
			content: "mode: fast\nweb:\n  version: 1.2.0\n",
			want:    map[string]any{"mode": "fast", "web": map[string]any{"version": "1.2.0"}},
		},
		{
			name:    "json",
			content: `{"mode": "fast", "web": {"replicas": 3}}`,
			want:    map[string]any{"mode": "fast", "web": map[string]any{"replicas": 3}},
		},
		{
			name:    "empty file",
			content: "",
			want:    map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := loadTokenFile(tokenFile(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestLoadTokenFileWithoutPath(t *testing.T) {
	data, err := loadTokenFile("")
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestLoadTokenFileErrors(t *testing.T) {
	_, err := loadTokenFile(filepath.Join(t.TempDir(), "absent.yml"))
	assert.ErrorIs(t, err, oerrors.ErrNotFound)

	_, err = loadTokenFile(tokenFile(t, "mode: [unterminated\n"))
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestResolveModelPromptsForMissingTokens(t *testing.T) {
	root := tokenTree(t)
	data := map[string]any{"mode": "fast"}

	var asked [][]string
	prompt := func(_ context.Context, tokens []string) (map[string]string, error) {
		asked = append(asked, tokens)
		return map[string]string{"web.version": "1.2.0"}, nil
	}

	model, err := resolveModel(context.Background(), root, data, prompt)
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Equal(t, [][]string{{"web.version"}}, asked)
	assert.Equal(t, map[string]any{"version": "1.2.0"}, data["web"])
	c := model.Resources["web.shop"].Deployment.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "registry.example.com/shop/web:1.2.0", c.Image)
}

func TestResolveModelWithoutPrompt(t *testing.T) {
	model, err := resolveModel(context.Background(), tokenTree(t), map[string]any{}, nil)
	assert.Nil(t, model)

	var missing *oerrors.MissingTokenError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"web.version", "mode"}, missing.Tokens)
}

func TestResolveModelStopsWhenAnswersDoNotHelp(t *testing.T) {
	calls := 0
	prompt := func(_ context.Context, _ []string) (map[string]string, error) {
		calls++
		return map[string]string{}, nil
	}

	_, err := resolveModel(context.Background(), tokenTree(t), map[string]any{}, prompt)
	assert.ErrorIs(t, err, oerrors.ErrMissingTokens)
	assert.Equal(t, 1, calls)
}

func TestResolveModelPromptFailure(t *testing.T) {
	boom := errors.New("interrupted")
	prompt := func(_ context.Context, _ []string) (map[string]string, error) {
		return nil, boom
	}

	_, err := resolveModel(context.Background(), tokenTree(t), map[string]any{}, prompt)
	assert.ErrorIs(t, err, boom)
}
