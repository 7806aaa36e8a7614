package output

import (
	"bytes"
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	oerrors "github.com/transfigure/cli/internal/errors"
)

// Document is one file of the manifest tree. Objects are serialized as
// YAML documents; a document without objects is written as Text.
type Document struct {
	// Path is relative to the output root, slash separated.
	Path        string
	Objects     []any
	Text        string
	Description string
}

// File is a rendered document.
type File struct {
	Path        string
	Content     []byte
	Description string
}

// Files is a rendered manifest tree ordered by path.
type Files []File

// Paths lists the file paths.
func (f Files) Paths() []string {
	out := make([]string, len(f))
	for i, file := range f {
		out[i] = file.Path
	}
	return out
}

// Descriptions maps each path to its description.
func (f Files) Descriptions() map[string]string {
	out := make(map[string]string, len(f))
	for _, file := range f {
		out[file.Path] = file.Description
	}
	return out
}

// Render serializes documents. Paths must be unique.
func Render(docs []Document) (Files, error) {
	files := make(Files, 0, len(docs))
	seen := map[string]bool{}
	for _, doc := range docs {
		if seen[doc.Path] {
			return nil, &oerrors.SerializationError{Path: doc.Path, Cause: fmt.Errorf("duplicate output path")}
		}
		seen[doc.Path] = true

		content := []byte(doc.Text)
		if len(doc.Objects) > 0 {
			var buf bytes.Buffer
			for i, obj := range doc.Objects {
				b, err := MarshalObject(obj)
				if err != nil {
					return nil, &oerrors.SerializationError{Path: doc.Path, Cause: err}
				}
				if i > 0 {
					buf.WriteString("---\n")
				}
				buf.Write(b)
			}
			content = buf.Bytes()
		}
		files = append(files, File{Path: doc.Path, Content: content, Description: doc.Description})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	Debug("rendered manifest tree", "files", len(files))
	return files, nil
}

// MarshalObject serializes one object as YAML. Typed API objects are
// converted first so unset timestamps and empty status blocks are left out.
func MarshalObject(obj any) ([]byte, error) {
	var v any = obj
	switch o := obj.(type) {
	case *unstructured.Unstructured:
		v = o.Object
	case runtime.Object:
		m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(o)
		if err != nil {
			return nil, fmt.Errorf("converting %T: %w", obj, err)
		}
		prune(m)
		v = m
	}
	return yaml.Marshal(v)
}

// prune drops null creation timestamps and empty status blocks at any depth.
func prune(v any) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			switch {
			case k == "creationTimestamp" && child == nil:
				delete(node, k)
				continue
			case k == "status" && empty(child):
				delete(node, k)
				continue
			}
			prune(child)
		}
	case []any:
		for _, child := range node {
			prune(child)
		}
	}
}

// empty reports whether v is a map holding nothing but empty maps.
func empty(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, child := range m {
		if !empty(child) {
			return false
		}
	}
	return true
}
