package token

import (
	oerrors "github.com/transfigure/cli/internal/errors"
)

// Missing returns the tokens that cannot be resolved in data, in the order
// given.
func Missing(tokens []string, data map[string]any) []string {
	var missing []string
	for _, tok := range tokens {
		if _, ok := Lookup(data, tok); !ok {
			missing = append(missing, tok)
		}
	}
	return missing
}

// Verify checks that every token resolves in data. All unresolved tokens
// are reported together in one *errors.MissingTokenError.
func Verify(tokens []string, data map[string]any, specPath string) error {
	missing := Missing(tokens, data)
	if len(missing) == 0 {
		return nil
	}
	return &oerrors.MissingTokenError{Tokens: missing, SpecPath: specPath}
}
