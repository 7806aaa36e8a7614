package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		cfg        *Config
		wantFields []string
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{name: "empty", cfg: &Config{}},
		{name: "full", cfg: &Config{APIVersion: "1.27.3", GitBasePath: "/srv/git", Scale: "large", Branch: "release/v2"}},
		{name: "bad api version", cfg: &Config{APIVersion: "latest"}, wantFields: []string{"apiVersion"}},
		{name: "bad scale", cfg: &Config{Scale: "very large"}, wantFields: []string{"scale"}},
		{name: "bad branch", cfg: &Config{Branch: "a b"}, wantFields: []string{"branch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.cfg)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestValidateFile(t *testing.T) {
	clearEnv(t)
	v, err := NewValidator()
	require.NoError(t, err)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("apiVersion: one\n"), 0o644))
	assert.Error(t, v.ValidateFile(configFile))

	require.NoError(t, os.WriteFile(configFile, []byte("apiVersion: \"1.16\"\n"), 0o644))
	assert.NoError(t, v.ValidateFile(configFile))
}
