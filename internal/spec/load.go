package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/token"
)

// Deployment defaults applied when a table leaves them unset.
const (
	DefaultUnavailable = 1
	DefaultSurge       = 1
	DefaultHistory     = 1
)

// LoadOptions configures Load.
type LoadOptions struct {
	// Data binds the tokens in the file.
	Data map[string]any
}

// Load reads a specification file, expands its tokens and decodes it.
func Load(path string, opts LoadOptions) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading specification: %w", err)
	}
	text := string(content)
	if token.HasTokens(text) {
		text, err = token.Render(text, opts.Data)
		if err != nil {
			return nil, oerrors.NewValidationError(err.Error(), path, "", "Every token must be bound before the file can be loaded.")
		}
	}
	return Parse(text, path)
}

// Parse decodes, validates and qualifies a rendered specification table.
// path locates the table in the source tree and names it when the table
// does not.
func Parse(text, path string) (*Table, error) {
	var raw map[string]any
	if _, err := toml.Decode(text, &raw); err != nil {
		return nil, oerrors.NewValidationError(fmt.Sprintf("invalid TOML: %v", err), path, "", "")
	}
	if err := Validate(raw, path); err != nil {
		return nil, err
	}

	var t Table
	if _, err := toml.Decode(text, &t); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), path, "", "")
	}
	t.Raw = raw
	t.Path = path
	t.qualify(path)
	t.applyDefaults()
	return &t, nil
}

// qualify sets Name and Namespace. A name written as name.namespace wins;
// otherwise the file name and its directory supply them.
func (t *Table) qualify(path string) {
	if name, namespace, ok := strings.Cut(t.Name, "."); ok {
		t.Name = name
		t.Namespace = namespace
		return
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if t.Namespace == "" {
		t.Namespace = filepath.Base(filepath.Dir(path))
	}
}

func (t *Table) applyDefaults() {
	if t.Deployment.Unavailable == nil {
		t.Deployment.Unavailable = int64(DefaultUnavailable)
	}
	if t.Deployment.Surge == nil {
		t.Deployment.Surge = int64(DefaultSurge)
	}
	if t.Deployment.History == 0 {
		t.Deployment.History = DefaultHistory
	}
}
