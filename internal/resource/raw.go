package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/token"
)

// DefaultNamespace is the namespace of raw resources that declare none.
const DefaultNamespace = "default"

// Raw loads a raw resource file, rendering tokens from data first, and
// passes the object through unchanged.
func Raw(path string, data map[string]any) (*Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, oerrors.NewNotFoundError("cannot read raw resource", path, err.Error())
	}
	text := string(content)
	if token.HasTokens(text) {
		text, err = token.Render(text, data)
		if err != nil {
			return nil, oerrors.NewValidationError(fmt.Sprintf("cannot render raw resource: %v", err), path, "", "")
		}
	}

	var obj map[string]any
	if err := yaml.Unmarshal([]byte(text), &obj); err != nil {
		return nil, oerrors.NewValidationError(fmt.Sprintf("invalid YAML: %v", err), path, "", "")
	}
	u := &unstructured.Unstructured{Object: obj}
	if u.GetKind() == "" {
		return nil, oerrors.NewValidationError("raw resource has no kind", path, "kind", "add a kind field")
	}

	name := u.GetName()
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(strings.TrimSuffix(base, ".yml"), ".yaml")
		name = strings.TrimSuffix(name, ".raw")
		u.SetName(name)
	}
	namespace := u.GetNamespace()
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Definition{
		FQN:       name + "." + namespace,
		Name:      name,
		Namespace: namespace,
		Raw:       u,
	}, nil
}
