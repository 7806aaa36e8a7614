package cmd

import (
	"github.com/spf13/cobra"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/config"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/version"
)

var (
	// Global flags
	configFlag      string
	verboseFlag     bool
	timestampsFlag  bool
	apiVersionFlag  string
	gitBasePathFlag string
	tokenFileFlag   string
	scaleFlag       string
	branchFlag      string
	noPromptFlag    bool

	// Loaded and resolved configuration (set during PersistentPreRunE)
	loadedConfig *config.Config
	resolved     settings
)

// settings holds the values resolved from flags, environment, config file
// and defaults.
type settings struct {
	ConfigPath  config.ResolvedValue
	APIVersion  config.ResolvedValue
	GitBasePath config.ResolvedValue
	TokenFile   config.ResolvedValue
	Scale       config.ResolvedValue
	Branch      config.ResolvedValue
}

func (s settings) values() []config.ResolvedValue {
	return []config.ResolvedValue{s.ConfigPath, s.APIVersion, s.GitBasePath, s.TokenFile, s.Scale, s.Branch}
}

// NewRootCmd creates the root command for the transfigure CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transfigure <source> [target]",
		Short: "Transfigure cluster specifications into Kubernetes manifests",
		Long: `transfigure resolves a tree of cluster specifications into Kubernetes
resources.

The source is a local directory, a tarball (.tgz, .tar.gz, .tar) or a git
URL (https://, git://, git@) with an optional :tag suffix. Tokens written
as <%= dotted.path %> are bound from --tokenFile; unbound tokens are
prompted for when running in a terminal.

Without a target directory the resolved model is summarized. With a
target the manifests are written below it.

Examples:
  # Summarize a local specification tree
  transfigure ./specs

  # Write manifests for the large scale tier
  transfigure ./specs ./out --scale large --tokenFile tokens.yml

  # Resolve a tagged repository
  transfigure https://github.com/acme/cluster.git:v2 ./out`,
		Args:          usageArgs(cobra.RangeArgs(1, 2)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
		RunE: runTransfigure,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return NewExitError(err, ExitUsage)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", "", "Path to config file (env: TRANSFIGURE_CONFIG)")
	flags.BoolVar(&verboseFlag, "verbose", false, "Enable verbose output")
	flags.BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")
	flags.StringVarP(&apiVersionFlag, "apiVersion", "v", "", "Target platform version (env: TRANSFIGURE_API_VERSION)")
	flags.StringVarP(&gitBasePathFlag, "gitBasePath", "g", "", "Directory repositories are cloned into (env: GIT_BASE_PATH)")
	flags.StringVarP(&tokenFileFlag, "tokenFile", "f", "", "YAML or JSON file binding tokens (env: TRANSFIGURE_TOKEN_FILE)")
	flags.StringVarP(&scaleFlag, "scale", "s", "", "Scale tier to resolve (env: TRANSFIGURE_SCALE)")
	flags.StringVar(&branchFlag, "branch", "", "Branch for repository sources without a tag (env: TRANSFIGURE_BRANCH)")
	flags.BoolVar(&noPromptFlag, "no-prompt", false, "Fail instead of prompting for missing tokens")

	rootCmd.Flags().StringVarP(&summaryFormatFlag, "output", "o", string(output.FormatTable),
		"Summary format: table, yaml, json")

	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewTokensCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads configuration, resolves settings and sets up
// logging.
func initializeGlobals(cmd *cobra.Command) error {
	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: configFlag,
	})
	if err != nil {
		output.Debug("could not resolve config path", "error", err)
	}

	loaded, err := config.NewLoader().Load(pathResult.Value)
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}
	loadedConfig = loaded

	resolved = resolveSettings(pathResult, loaded)

	logCfg := output.LogConfig{
		Verbose: verboseFlag,
	}
	// flag (if explicitly set) > config > default (nil = true)
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if loaded.Log.Timestamps != nil {
		logCfg.Timestamps = loaded.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if verboseFlag {
		info := version.Get()
		output.Debug("initializing CLI",
			"version", info.Version,
			"config", resolved.ConfigPath.Value,
			"apiVersion", resolved.APIVersion.Value,
			"scale", resolved.Scale.Value,
		)
		config.LogResolvedValues(resolved.values())
	}

	return nil
}

func resolveSettings(pathResult config.ResolvedValue, cfg *config.Config) settings {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return settings{
		ConfigPath: pathResult,
		APIVersion: config.Resolve(config.ResolveOptions{
			Key:          "apiVersion",
			FlagValue:    apiVersionFlag,
			EnvVars:      []string{"TRANSFIGURE_API_VERSION"},
			ConfigValue:  cfg.APIVersion,
			DefaultValue: apiversion.DefaultPlatform,
		}),
		GitBasePath: config.Resolve(config.ResolveOptions{
			Key:          "gitBasePath",
			FlagValue:    gitBasePathFlag,
			EnvVars:      []string{"TRANSFIGURE_GIT_BASE_PATH", "GIT_BASE_PATH"},
			ConfigValue:  cfg.GitBasePath,
			DefaultValue: config.DefaultGitBasePath,
		}),
		TokenFile: config.Resolve(config.ResolveOptions{
			Key:         "tokenFile",
			FlagValue:   tokenFileFlag,
			EnvVars:     []string{"TRANSFIGURE_TOKEN_FILE"},
			ConfigValue: cfg.TokenFile,
		}),
		Scale: config.Resolve(config.ResolveOptions{
			Key:         "scale",
			FlagValue:   scaleFlag,
			EnvVars:     []string{"TRANSFIGURE_SCALE"},
			ConfigValue: cfg.Scale,
		}),
		Branch: config.Resolve(config.ResolveOptions{
			Key:         "branch",
			FlagValue:   branchFlag,
			EnvVars:     []string{"TRANSFIGURE_BRANCH"},
			ConfigValue: cfg.Branch,
		}),
	}
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return NewExitError(err, ExitUsage)
		}
		return nil
	}
}

// GetConfigPath returns the resolved config path value.
func GetConfigPath() string {
	if resolved.ConfigPath.Value != "" {
		return resolved.ConfigPath.Value
	}
	return configFlag
}
