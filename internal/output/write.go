package output

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	oerrors "github.com/transfigure/cli/internal/errors"
)

// FileResult is the outcome of writing one file.
type FileResult struct {
	Path   string
	Status string
}

// Write writes files under dir, creating directories as needed. It
// reports whether each file was created, updated or left unchanged.
func Write(dir string, files Files) ([]FileResult, error) {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		full := filepath.Join(dir, filepath.FromSlash(f.Path))

		status := StatusCreated
		existing, err := os.ReadFile(full)
		switch {
		case err == nil && bytes.Equal(existing, f.Content):
			results = append(results, FileResult{Path: f.Path, Status: StatusUnchanged})
			continue
		case err == nil:
			status = StatusUpdated
		case !errors.Is(err, fs.ErrNotExist):
			return results, &oerrors.SerializationError{Path: full, Cause: err}
		}

		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return results, &oerrors.SerializationError{Path: full, Cause: err}
		}
		if err := os.WriteFile(full, f.Content, 0o644); err != nil {
			return results, &oerrors.SerializationError{Path: full, Cause: err}
		}
		results = append(results, FileResult{Path: f.Path, Status: status})
	}
	Debug("wrote manifest tree", "dir", dir, "files", len(results))
	return results, nil
}
