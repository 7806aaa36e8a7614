package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transfigure/cli/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show transfigure version information.

Displays:
  - CLI version, commit, and build date
  - Default platform API version
  - CUE SDK version (embedded in CLI)
  - git binary used for repository sources`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := version.Get()
	git := version.DetectGitBinary()

	fmt.Fprintln(cmd.OutOrStdout(), version.FullVersionString(info, git))
	return nil
}
