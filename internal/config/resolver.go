package config

import (
	"os"

	"github.com/transfigure/cli/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration value and where it came from.
type ResolvedValue struct {
	Key      string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// ResolveOptions contains the candidate values of one key.
type ResolveOptions struct {
	Key string
	// FlagValue is the flag value (empty if not set).
	FlagValue string
	// EnvVars are consulted in order; the first set one counts.
	EnvVars []string
	// ConfigValue is the value from the config file (empty if not set).
	ConfigValue string
	// DefaultValue is used when nothing else is set.
	DefaultValue string
}

// Resolve resolves one key using precedence:
// (1) flag, (2) environment, (3) config file, (4) default.
func Resolve(opts ResolveOptions) ResolvedValue {
	result := ResolvedValue{Key: opts.Key, Shadowed: make(map[ConfigSource]string)}

	envValue := ""
	for _, name := range opts.EnvVars {
		if v := os.Getenv(name); v != "" {
			envValue = v
			break
		}
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, envValue},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, opts.DefaultValue},
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	return result
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) TRANSFIGURE_CONFIG env, (3) ~/.transfigure/config.yaml
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}
	return Resolve(ResolveOptions{
		Key:          "config",
		FlagValue:    opts.FlagValue,
		EnvVars:      []string{EnvConfig},
		DefaultValue: paths.ConfigFile,
	}), nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
