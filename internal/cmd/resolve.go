package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/transfigure/cli/internal/cluster"
	"github.com/transfigure/cli/internal/config"
	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/pipeline"
	"github.com/transfigure/cli/internal/token"
)

// promptFunc asks the user for the values of tokens, keyed by token.
type promptFunc func(ctx context.Context, tokens []string) (map[string]string, error)

// pipelineOptions builds resolution options from the resolved settings.
func pipelineOptions(data map[string]any) pipeline.Options {
	return pipeline.Options{
		Data:        data,
		APIVersion:  resolved.APIVersion.Value,
		Scale:       resolved.Scale.Value,
		GitBasePath: resolved.GitBasePath.Value,
		Branch:      resolved.Branch.Value,
	}
}

// tokenPrompt returns the prompt for missing tokens, or nil when prompting
// is disabled or no terminal is attached.
func tokenPrompt() promptFunc {
	if noPromptFlag || !output.IsInteractive() {
		return nil
	}
	return promptTokens
}

// loadTokenFile reads the token data file at path. YAML and JSON are
// accepted. An empty path yields empty data.
func loadTokenFile(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding token file path: %w", err)
	}

	content, err := os.ReadFile(expanded)
	if err != nil {
		return nil, &oerrors.DetailError{
			Type:     "not found",
			Message:  err.Error(),
			Location: expanded,
			Hint:     "Check the --tokenFile path.",
			Cause:    oerrors.ErrNotFound,
		}
	}

	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, oerrors.NewValidationError(
			"token file is neither YAML nor JSON: "+err.Error(), expanded, "", "")
	}
	if data == nil {
		data = map[string]any{}
	}

	output.Debug("loaded token file", "path", expanded, "keys", len(data))
	return data, nil
}

// fetchSource materializes location as a local directory.
func fetchSource(ctx context.Context, location string) (string, error) {
	var root string
	err := output.RunWithSpinner(ctx, func() error {
		var err error
		root, err = pipeline.Fetch(ctx, location, pipelineOptions(nil))
		return err
	}, output.WithTitle("Fetching "+location))
	return root, err
}

// resolveModel resolves the tree at root. Missing tokens are asked for
// with prompt and resolution is retried; without a prompt the
// *errors.MissingTokenError is returned.
func resolveModel(ctx context.Context, root string, data map[string]any, prompt promptFunc) (*cluster.Model, error) {
	var asked []string
	for {
		var model *cluster.Model
		err := output.RunWithSpinner(ctx, func() error {
			var err error
			model, err = pipeline.Resolve(ctx, root, pipelineOptions(data))
			return err
		}, output.WithTitle("Resolving "+root))

		var missing *oerrors.MissingTokenError
		if err == nil || prompt == nil || !errors.As(err, &missing) {
			return model, err
		}
		if slices.Equal(asked, missing.Tokens) {
			return nil, err
		}
		asked = missing.Tokens

		output.Warn("tokens are missing", "count", len(missing.Tokens))
		answers, err := prompt(ctx, missing.Tokens)
		if err != nil {
			return nil, err
		}
		for _, tok := range missing.Tokens {
			if v, ok := answers[tok]; ok {
				token.Bind(data, tok, v)
			}
		}
	}
}

// promptTokens asks for every token in one form.
func promptTokens(ctx context.Context, tokens []string) (map[string]string, error) {
	values := make([]string, len(tokens))
	fields := make([]huh.Field, 0, len(tokens))
	for i, tok := range tokens {
		fields = append(fields, huh.NewInput().
			Title(tok).
			Description("Value bound to <%= "+tok+" %>").
			Value(&values[i]))
	}

	err := huh.NewForm(
		huh.NewGroup(fields...).Title("Missing tokens"),
	).RunWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("prompting for tokens: %w", err)
	}

	answers := make(map[string]string, len(tokens))
	for i, tok := range tokens {
		answers[tok] = values[i]
	}
	return answers, nil
}

// loadModel fetches location and resolves it with the configured token
// data.
func loadModel(ctx context.Context, location string) (*cluster.Model, error) {
	data, err := loadTokenFile(resolved.TokenFile.Value)
	if err != nil {
		return nil, err
	}
	root, err := fetchSource(ctx, location)
	if err != nil {
		return nil, err
	}
	return resolveModel(ctx, root, data, tokenPrompt())
}
