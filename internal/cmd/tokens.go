package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/pipeline"
)

var tokensFormatFlag string

// NewTokensCmd creates the tokens command.
func NewTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens <source>",
		Short: "List the tokens a specification source references",
		Long: `List every token referenced below a specification source and whether
the token data binds it.

Token data is read from --tokenFile. Nothing is prompted for.

Examples:
  # Show which tokens still need values
  transfigure tokens ./specs --tokenFile tokens.yml

  # Machine-readable listing
  transfigure tokens ./specs -o json`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: runTokens,
	}

	cmd.Flags().StringVarP(&tokensFormatFlag, "output", "o", string(output.FormatTable),
		"Output format: table, yaml, json")

	return cmd
}

func runTokens(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(tokensFormatFlag)
	if err != nil {
		return err
	}

	data, err := loadTokenFile(resolved.TokenFile.Value)
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}
	root, err := fetchSource(cmd.Context(), args[0])
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}
	statuses, err := pipeline.Tokens(root, data)
	if err != nil {
		return fatal(cmd.ErrOrStderr(), err)
	}

	return fatal(cmd.ErrOrStderr(), writeTokens(cmd.OutOrStdout(), statuses, format))
}

// writeTokens prints token statuses in format.
func writeTokens(w io.Writer, statuses []pipeline.TokenStatus, format output.Format) error {
	if statuses == nil {
		statuses = []pipeline.TokenStatus{}
	}

	switch format {
	case output.FormatJSON:
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling tokens: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case output.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(statuses); err != nil {
			return fmt.Errorf("marshaling tokens: %w", err)
		}
		return enc.Close()
	}

	if len(statuses) == 0 {
		_, err := fmt.Fprintln(w, "No tokens referenced.")
		return err
	}

	tbl := output.NewTable("TOKEN", "STATUS")
	bound := 0
	for _, s := range statuses {
		status := "missing"
		if s.Bound {
			status = "bound"
			bound++
		}
		tbl.Row(s.Token, status)
	}
	_, err := fmt.Fprintf(w, "%s\n%d of %s bound\n", tbl.String(), bound,
		output.FormatCount(len(statuses), "token"))
	return err
}
