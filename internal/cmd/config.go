package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/transfigure/cli/internal/config"
	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/output"
)

var configInitForce bool

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the transfigure CLI.`,
	}

	cmd.AddCommand(NewConfigInitCmd())
	cmd.AddCommand(NewConfigVetCmd())

	return cmd
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Write a default configuration file.

The file is written to the resolved config path:
  --config flag > TRANSFIGURE_CONFIG env > ~/.transfigure/config.yaml

Examples:
  # Initialize configuration
  transfigure config init

  # Overwrite existing configuration
  transfigure config init --force`,
		Args: usageArgs(cobra.NoArgs),
		RunE: runConfigInit,
	}

	cmd.Flags().BoolVar(&configInitForce, "force", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}
	if exists && !configInitForce {
		return fatal(cmd.ErrOrStderr(), &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fatal(cmd.ErrOrStderr(), &oerrors.SerializationError{Path: path, Cause: err})
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
		return fatal(cmd.ErrOrStderr(), &oerrors.SerializationError{Path: path, Cause: err})
	}

	output.Println(output.FormatCheckmark("Configuration initialized at " + path))
	output.Println("Validate with: transfigure config vet")
	return nil
}

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the configuration file against the embedded schema.

The config path is resolved using precedence:
  --config flag > TRANSFIGURE_CONFIG env > ~/.transfigure/config.yaml

Examples:
  # Validate default configuration
  transfigure config vet

  # Validate custom config path
  transfigure config vet --config /path/to/config.yaml`,
		Args: usageArgs(cobra.NoArgs),
		RunE: runConfigVet,
	}
}

func runConfigVet(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	output.Debug("validating config", "path", path, "source", resolved.ConfigPath.Source)

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}
	if !exists {
		return fatal(cmd.ErrOrStderr(), oerrors.NewNotFoundError(
			"configuration file not found", path,
			"Run 'transfigure config init' to create default configuration."))
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	if err := validator.ValidateFile(path); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			w := cmd.ErrOrStderr()
			fmt.Fprintln(w, "Error: config validation failed")
			fmt.Fprintf(w, "  File: %s\n\n", path)
			for _, e := range validationErrs {
				fmt.Fprintf(w, "  %s: %s\n", e.Field, e.Message)
			}
			return &ExitError{Err: err, Code: ExitFatal, Printed: true}
		}
		return fatal(cmd.ErrOrStderr(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file is valid: %s\n", path)
	return nil
}

// configPath returns the resolved config file path with ~ expanded.
func configPath() (string, error) {
	path := GetConfigPath()
	if path == "" {
		var err error
		if path, err = config.GetConfigFile(); err != nil {
			return "", fmt.Errorf("getting config file path: %w", err)
		}
	}
	return config.ExpandPath(path)
}
