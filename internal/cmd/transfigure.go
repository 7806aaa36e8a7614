package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transfigure/cli/internal/output"
)

var summaryFormatFlag string

func runTransfigure(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(summaryFormatFlag)
	if err != nil {
		return err
	}

	model, err := loadModel(cmd.Context(), args[0])
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	if len(args) == 1 {
		return fatal(cmd.ErrOrStderr(), output.WriteSummary(cmd.OutOrStdout(), model.Summary(), format))
	}

	target, err := filepath.Abs(args[1])
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	files, err := output.Render(model.Documents())
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	results, err := output.Write(target, files)
	if err != nil {
		for _, r := range results {
			output.Println(output.FormatFileLine(r.Path, r.Status))
		}
		return fatal(cmd.ErrOrStderr(), err)
	}

	styles := output.NoColorStyles()
	if output.IsTTY() {
		styles = output.DefaultStyles()
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.FileTree(target, results, styles))

	output.Println(output.FormatCheckmark(fmt.Sprintf("%s written to %s",
		output.FormatCount(len(results), "file"), target)))
	output.Println(output.StyleDim.Render("  digest " + files.Digest()))
	return nil
}

// parseFormatFlag parses an --output value. Unknown names are usage errors.
func parseFormatFlag(value string) (output.Format, error) {
	format := output.ParseFormat(value)
	if format == output.FormatTable && value != "" && strings.ToLower(value) != string(output.FormatTable) {
		return "", NewExitError(fmt.Errorf("invalid output format %q (valid: %s)",
			value, strings.Join(output.ValidFormats(), ", ")), ExitUsage)
	}
	return format, nil
}
