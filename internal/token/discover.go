package token

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/output"
)

// IsSpecFile reports whether name is a tabular or raw specification file.
func IsSpecFile(name string) bool {
	return strings.HasSuffix(name, ".toml") ||
		strings.HasSuffix(name, ".raw.yml") ||
		strings.HasSuffix(name, ".raw.yaml")
}

// SourceFiles lists the specification files under root in lexical order,
// skipping hidden directories.
func SourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSpecFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Discover returns every token referenced under root, including tokens that
// only appear in files mounted through config map volumes.
func Discover(root string) ([]string, error) {
	files, err := SourceFiles(root)
	if err != nil {
		return nil, err
	}
	d := &discovery{seen: map[string]bool{}}
	var all []string
	for _, file := range files {
		tokens, err := d.file(file)
		if err != nil {
			return nil, err
		}
		all = Union(all, tokens)
	}
	output.Debug("discovered tokens", "root", root, "files", len(files), "tokens", len(all))
	return all, nil
}

type discovery struct {
	seen map[string]bool
}

// volumeRefs is the part of a workload table discovery needs.
type volumeRefs struct {
	Volumes map[string]string `toml:"volumes"`
}

func (d *discovery) file(path string) ([]string, error) {
	if d.seen[path] {
		return nil, nil
	}
	d.seen[path] = true

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(content)
	tokens := Scan(text)
	if !strings.HasSuffix(path, ".toml") {
		return tokens, nil
	}

	// Zero-fill tokens so the table decodes before real values exist.
	if len(tokens) > 0 {
		if text, err = Render(text, Filler(tokens)); err != nil {
			return nil, oerrors.NewValidationError(err.Error(), path, "", "")
		}
	}
	var refs volumeRefs
	if _, err := toml.Decode(text, &refs); err != nil {
		return nil, oerrors.NewValidationError(fmt.Sprintf("invalid TOML: %v", err), path, "", "")
	}

	dir := filepath.Dir(path)
	names := make([]string, 0, len(refs.Volumes))
	for name := range refs.Volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, items := grammar.ConfigItems(refs.Volumes[name])
		for _, item := range items {
			mounted := filepath.Join(dir, item.Key)
			if _, err := os.Stat(mounted); err != nil {
				continue
			}
			more, err := d.file(mounted)
			if err != nil {
				return nil, err
			}
			tokens = Union(tokens, more)
		}
	}
	return tokens, nil
}
