package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transfigure/cli/internal/output"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <source> <target>",
		Short: "Compare resolved manifests with a previous output tree",
		Long: `Resolve a specification source and compare the manifests with those
already written below the target directory.

Files are reported as added, removed or modified. YAML files are compared
semantically, so reordered keys are not changes.

Examples:
  # Compare against the last written output
  transfigure diff ./specs ./out

  # Compare a different scale tier
  transfigure diff ./specs ./out --scale small`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: runDiff,
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	model, err := loadModel(cmd.Context(), args[0])
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	files, err := output.Render(model.Documents())
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	useColor := output.IsTTY()
	result, err := output.Diff(args[1], files, useColor)
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	styles := output.NoColorStyles()
	if useColor {
		styles = output.DefaultStyles()
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(output.RenderDiff(result, styles), "\n"))
	return nil
}
