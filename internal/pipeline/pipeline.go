// Package pipeline resolves a specification source into a finalized
// cluster model.
package pipeline

import (
	"context"

	"github.com/transfigure/cli/internal/cluster"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/source"
	"github.com/transfigure/cli/internal/token"
)

// Options configures a resolution.
type Options struct {
	// Data binds the tokens of the source tree.
	Data map[string]any
	// APIVersion is the target platform version.
	APIVersion string
	// Scale names the requested scale tier.
	Scale string
	// GitBasePath is where repository sources are cloned.
	GitBasePath string
	// Branch is checked out for repository sources without a tag.
	Branch string
	// Git runs git for repository sources. Nil uses git on PATH.
	Git *source.Git
}

// TokenStatus reports whether a discovered token is bound.
type TokenStatus struct {
	Token string `json:"token" yaml:"token"`
	Bound bool   `json:"bound" yaml:"bound"`
}

// Fetch materializes location as a local directory.
func Fetch(ctx context.Context, location string, opts Options) (string, error) {
	dir, err := source.Fetch(ctx, location, source.Options{
		GitBasePath: opts.GitBasePath,
		Branch:      opts.Branch,
		Git:         opts.Git,
	})
	if err != nil {
		return "", phaseError(PhaseFetch, err)
	}
	return dir, nil
}

// Transfigure fetches location and resolves it.
func Transfigure(ctx context.Context, location string, opts Options) (*cluster.Model, error) {
	root, err := Fetch(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, root, opts)
}

// Resolve builds the cluster model of the local tree at root.
//
// Phase sequence:
//  1. DISCOVER: token.Discover() → every token referenced under root
//  2. VERIFY:   token.Verify() → all missing tokens in one error
//  3. LOAD:     cluster.Load() → model seeded from cluster.toml
//  4. ASSEMBLE: Model.Assemble() → one definition per specification file
//  5. FINALIZE: Model.Finalize() → proxy blocks spliced
//
// Any failure returns (nil, err); no partial model escapes. A
// *errors.MissingTokenError from VERIFY can be retried with more data.
func Resolve(ctx context.Context, root string, opts Options) (*cluster.Model, error) {
	tokens, err := token.Discover(root)
	if err != nil {
		return nil, phaseError(PhaseDiscover, err)
	}

	if err := token.Verify(tokens, opts.Data, root); err != nil {
		return nil, phaseError(PhaseVerify, err)
	}

	model, err := cluster.Load(root, cluster.Options{
		Data:       opts.Data,
		APIVersion: opts.APIVersion,
		Scale:      opts.Scale,
	})
	if err != nil {
		return nil, phaseError(PhaseLoad, err)
	}

	if err := model.Assemble(ctx); err != nil {
		return nil, phaseError(PhaseAssemble, err)
	}
	if err := model.Finalize(); err != nil {
		return nil, phaseError(PhaseFinalize, err)
	}

	output.Debug("cluster resolved",
		"root", root,
		"apiVersion", model.APIVersion,
		"definitions", len(model.Resources),
		"namespaces", len(model.Namespaces),
	)
	return model, nil
}

// Tokens lists the tokens referenced under root and whether data binds
// each.
func Tokens(root string, data map[string]any) ([]TokenStatus, error) {
	tokens, err := token.Discover(root)
	if err != nil {
		return nil, phaseError(PhaseDiscover, err)
	}
	missing := map[string]bool{}
	for _, tok := range token.Missing(tokens, data) {
		missing[tok] = true
	}
	out := make([]TokenStatus, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, TokenStatus{Token: tok, Bound: !missing[tok]})
	}
	return out, nil
}
