package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
)

// ModifiedItem is a file whose content changed.
type ModifiedItem struct {
	Name string
	Diff string
}

// DiffResult compares a rendered tree with a previously written one.
type DiffResult struct {
	Added    []string
	Removed  []string
	Modified []ModifiedItem
}

// IsEmpty reports whether nothing changed.
func (r *DiffResult) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// treeSuffixes are the file kinds the writer produces.
var treeSuffixes = []string{".yml", ".yaml", ".conf"}

// Diff compares files with the tree under dir. YAML files are compared
// structurally with dyff, other files byte for byte. Files under dir that
// the writer would produce but files lacks are reported removed.
func Diff(dir string, files Files, useColor bool) (*DiffResult, error) {
	result := &DiffResult{}
	want := make(map[string]bool, len(files))
	for _, f := range files {
		want[f.Path] = true
		existing, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Path)))
		if errors.Is(err, fs.ErrNotExist) {
			result.Added = append(result.Added, f.Path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, err)
		}
		if bytes.Equal(existing, f.Content) {
			continue
		}
		if !isYAML(f.Path) {
			result.Modified = append(result.Modified, ModifiedItem{Name: f.Path})
			continue
		}
		d, err := diffYAML(f.Path, existing, f.Content, useColor)
		if err != nil {
			return nil, fmt.Errorf("comparing %s: %w", f.Path, err)
		}
		if d != "" {
			result.Modified = append(result.Modified, ModifiedItem{Name: f.Path, Diff: d})
		}
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !hasTreeSuffix(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); !want[rel] {
			result.Removed = append(result.Removed, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(result.Removed)
	return result, nil
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml")
}

func hasTreeSuffix(name string) bool {
	for _, suffix := range treeSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// diffYAML computes a YAML-aware diff, empty when the documents are
// equivalent.
func diffYAML(name string, previous, current []byte, useColor bool) (string, error) {
	from, err := yamlInput(name+" (previous)", previous)
	if err != nil {
		return "", err
	}
	to, err := yamlInput(name, current)
	if err != nil {
		return "", err
	}
	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", err
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	human := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := human.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func yamlInput(location string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: location}, nil
	}
	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: location, Documents: docs}, nil
}

// RenderDiff renders a diff result.
func RenderDiff(r *DiffResult, styles *Styles) string {
	if r.IsEmpty() {
		return "No changes detected."
	}

	var sb strings.Builder
	if len(r.Added) > 0 {
		sb.WriteString(styles.Success.Render("Added:") + "\n")
		for _, name := range r.Added {
			sb.WriteString("  + " + styles.Success.Render(name) + "\n")
		}
		sb.WriteString("\n")
	}
	if len(r.Removed) > 0 {
		sb.WriteString(styles.Error.Render("Removed:") + "\n")
		for _, name := range r.Removed {
			sb.WriteString("  - " + styles.Error.Render(name) + "\n")
		}
		sb.WriteString("\n")
	}
	if len(r.Modified) > 0 {
		sb.WriteString(styles.Warning.Render("Modified:") + "\n")
		for _, mod := range r.Modified {
			sb.WriteString("  ~ " + styles.Warning.Render(mod.Name) + "\n")
			sb.WriteString(IndentDiff(mod.Diff, "    "))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("Summary: ")
	sb.WriteString(diffSummary(len(r.Added), len(r.Removed), len(r.Modified)))
	sb.WriteString("\n")
	return sb.String()
}

func diffSummary(added, removed, modified int) string {
	parts := make([]string, 0, 3)
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", removed))
	}
	if modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", modified))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// IndentDiff indents every non-empty line of diff.
func IndentDiff(diff, indent string) string {
	if diff == "" {
		return ""
	}
	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString(indent + line + "\n")
		}
	}
	return sb.String()
}
