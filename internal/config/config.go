// Package config provides configuration loading and management.
package config

import "github.com/transfigure/cli/internal/apiversion"

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" mapstructure:"timestamps"`
}

// Config represents the transfigure configuration.
// Loaded from ~/.transfigure/config.yaml, validated against the embedded
// CUE schema.
type Config struct {
	// APIVersion is the target platform version.
	// Env: TRANSFIGURE_API_VERSION, Default: 1.9
	APIVersion string `json:"apiVersion,omitempty" mapstructure:"apiVersion"`

	// GitBasePath is where repository sources are cloned.
	// Env: TRANSFIGURE_GIT_BASE_PATH or GIT_BASE_PATH, Default: ./git
	GitBasePath string `json:"gitBasePath,omitempty" mapstructure:"gitBasePath"`

	// Scale is the default scale tier.
	// Env: TRANSFIGURE_SCALE
	Scale string `json:"scale,omitempty" mapstructure:"scale"`

	// TokenFile is a YAML or JSON file binding tokens.
	// Env: TRANSFIGURE_TOKEN_FILE
	TokenFile string `json:"tokenFile,omitempty" mapstructure:"tokenFile"`

	// Branch is checked out for repository sources without a tag.
	// Env: TRANSFIGURE_BRANCH
	Branch string `json:"branch,omitempty" mapstructure:"branch"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty" mapstructure:"log"`
}

// Default values.
const (
	DefaultGitBasePath = "./git"
)

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		APIVersion:  apiversion.DefaultPlatform,
		GitBasePath: DefaultGitBasePath,
	}
}

// WithDefaults returns a copy of c with unset values defaulted.
func (c *Config) WithDefaults() *Config {
	out := *c
	defaults := DefaultConfig()
	if out.APIVersion == "" {
		out.APIVersion = defaults.APIVersion
	}
	if out.GitBasePath == "" {
		out.GitBasePath = defaults.GitBasePath
	}
	return &out
}

// DefaultConfigTemplate is written by `transfigure config init`.
const DefaultConfigTemplate = `# transfigure configuration
#
# Every key can be overridden by a flag or a TRANSFIGURE_* environment
# variable.

# Target platform version.
apiVersion: "1.9"

# Where repository sources are cloned. GIT_BASE_PATH also applies.
gitBasePath: ./git

# Default scale tier.
# scale: small

# YAML or JSON file binding tokens.
# tokenFile: ~/.transfigure/tokens.yaml

# Branch checked out for repository sources without a tag.
# branch: main

log:
  timestamps: true
`
