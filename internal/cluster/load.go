package cluster

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/transfigure/cli/internal/apiversion"
	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/token"
)

// File is the cluster configuration at the root of a source tree.
const File = "cluster.toml"

// Reserved top-level keys of the cluster configuration. Every other table
// is a namespace.
const (
	keyScaleOrder      = "scaleOrder"
	keyConfiguration   = "configuration"
	keySecret          = "secret"
	keyImagePullSecret = "imagePullSecret"
	keyOrder           = "order"
)

// Annotation carrying the repositories an image pull secret serves.
const RepositoriesAnnotation = "repositories"

// Load reads the cluster configuration of root. A missing cluster.toml
// yields an empty model.
func Load(root string, opts Options) (*Model, error) {
	m, err := newModel(root, opts)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(root, File)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		output.Debug("no cluster configuration", "path", path)
		return m, nil
	}
	if err != nil {
		return nil, oerrors.NewNotFoundError("cannot read cluster configuration", path, err.Error())
	}

	text := string(content)
	if token.HasTokens(text) {
		if text, err = token.Render(text, opts.Data); err != nil {
			return nil, oerrors.NewValidationError(fmt.Sprintf("cannot render cluster configuration: %v", err), path, "", "")
		}
	}
	var config map[string]any
	if _, err := toml.Decode(text, &config); err != nil {
		return nil, oerrors.NewValidationError(fmt.Sprintf("invalid TOML: %v", err), path, "", "")
	}
	if err := m.configure(config, path); err != nil {
		return nil, err
	}
	output.Debug("loaded cluster configuration", "path", path,
		"namespaces", len(m.Namespaces), "entries", len(m.Entries), "levels", m.Levels)
	return m, nil
}

func (m *Model) configure(config map[string]any, path string) error {
	if order, ok := config[keyScaleOrder].(string); ok {
		for _, tier := range strings.Split(order, ",") {
			if tier = strings.TrimSpace(tier); tier != "" {
				m.ScaleOrder = append(m.ScaleOrder, tier)
			}
		}
	}

	for _, ns := range sortedKeys(config) {
		switch ns {
		case keyConfiguration, keySecret, keyImagePullSecret:
			continue
		}
		entries, ok := config[ns].(map[string]any)
		if !ok {
			continue
		}
		m.addNamespace(ns)
		for _, name := range sortedKeys(entries) {
			table, ok := entries[name].(map[string]any)
			if !ok {
				continue
			}
			entry, err := parseEntry(name, ns, table)
			if err != nil {
				return oerrors.NewValidationError(err.Error(), path, ns+"."+name+"."+keyOrder, "order must be an integer")
			}
			m.Entries[entry.FQN()] = entry
			m.register(entry.FQN(), entry.Order)
		}
	}

	if err := m.configMaps(tables(config[keyConfiguration])); err != nil {
		return oerrors.NewValidationError(err.Error(), path, keyConfiguration, "")
	}
	m.secrets(tables(config[keySecret]))
	if err := m.pullSecrets(tables(config[keyImagePullSecret])); err != nil {
		return oerrors.NewValidationError(err.Error(), path, keyImagePullSecret, "")
	}
	return nil
}

func parseEntry(name, ns string, table map[string]any) (*Entry, error) {
	entry := &Entry{Name: name, Namespace: ns, Tiers: map[string]string{}}
	for key, v := range table {
		if key == keyOrder {
			n, ok := v.(int64)
			if !ok {
				return nil, fmt.Errorf("order of %s.%s is not an integer", name, ns)
			}
			entry.Order = int(n)
			continue
		}
		if expr, ok := v.(string); ok {
			entry.Tiers[key] = expr
		}
	}
	return entry, nil
}

func (m *Model) configMaps(namespaces map[string]map[string]any) error {
	for _, ns := range sortedKeys(namespaces) {
		for _, name := range sortedKeys(namespaces[ns]) {
			data, ok := namespaces[ns][name].(map[string]any)
			if !ok {
				return fmt.Errorf("configuration %s.%s is not a table", ns, name)
			}
			cm := m.configMap(ns, name)
			for key, v := range data {
				cm.Data[key] = fmt.Sprint(v)
			}
		}
	}
	return nil
}

// configMap returns the shared config map ns/name, creating it on first use.
func (m *Model) configMap(ns, name string) *corev1.ConfigMap {
	if cm, ok := m.configIndex[ns+"/"+name]; ok {
		return cm
	}
	cm := &corev1.ConfigMap{
		TypeMeta:   metav1.TypeMeta{APIVersion: m.versions.Version(apiversion.ConfigMap), Kind: "ConfigMap"},
		ObjectMeta: meta(ns, name),
		Data:       map[string]string{},
	}
	m.configIndex[ns+"/"+name] = cm
	m.Configuration = append(m.Configuration, cm)
	return cm
}

// secrets builds opaque secrets. Values that are valid base64 are taken as
// already encoded; anything else is stored as plain string data.
func (m *Model) secrets(namespaces map[string]map[string]any) {
	for _, ns := range sortedKeys(namespaces) {
		for _, name := range sortedKeys(namespaces[ns]) {
			data, ok := namespaces[ns][name].(map[string]any)
			if !ok {
				continue
			}
			s := m.secret(ns, name, corev1.SecretTypeOpaque)
			for _, key := range sortedKeys(data) {
				value := fmt.Sprint(data[key])
				if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
					if s.Data == nil {
						s.Data = map[string][]byte{}
					}
					s.Data[key] = decoded
					continue
				}
				if s.StringData == nil {
					s.StringData = map[string]string{}
				}
				s.StringData[key] = value
			}
			m.Secrets = append(m.Secrets, s)
		}
	}
}

type dockerConfig struct {
	Auths map[string]dockerAuth `json:"auths"`
}

type dockerAuth struct {
	Auth string `json:"auth"`
}

// pullSecrets builds one registry credential secret per namespace it is
// declared for, every namespace of the cluster when none are listed.
func (m *Model) pullSecrets(secrets map[string]map[string]any) error {
	for _, name := range sortedKeys(secrets) {
		decl := secrets[name]
		registry, _ := decl["registry"].(string)
		if registry == "" {
			return fmt.Errorf("image pull secret %s has no registry", name)
		}
		username, _ := decl["username"].(string)
		password, _ := decl["password"].(string)

		payload, err := json.Marshal(dockerConfig{Auths: map[string]dockerAuth{
			registry: {Auth: base64.StdEncoding.EncodeToString([]byte(username + ":" + password))},
		}})
		if err != nil {
			return fmt.Errorf("encoding image pull secret %s: %w", name, err)
		}

		namespaces := stringList(decl["namespaces"])
		if len(namespaces) == 0 {
			namespaces = m.Namespaces
		}
		repositories := strings.Join(stringList(decl["repositories"]), ",")

		for _, ns := range namespaces {
			s := m.secret(ns, name, corev1.SecretTypeDockerConfigJson)
			s.Data = map[string][]byte{corev1.DockerConfigJsonKey: payload}
			if repositories != "" {
				s.Annotations = map[string]string{RepositoriesAnnotation: repositories}
			}
			if m.ImagePullSecrets[ns] == nil {
				m.ImagePullSecrets[ns] = map[string]*corev1.Secret{}
			}
			m.ImagePullSecrets[ns][registry] = s
		}
	}
	return nil
}

func (m *Model) secret(ns, name string, kind corev1.SecretType) *corev1.Secret {
	return &corev1.Secret{
		TypeMeta:   metav1.TypeMeta{APIVersion: m.versions.Version(apiversion.Secret), Kind: "Secret"},
		ObjectMeta: meta(ns, name),
		Type:       kind,
	}
}

func meta(ns, name string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      name,
		Namespace: ns,
		Labels:    map[string]string{"name": name, "namespace": ns},
	}
}

// tables narrows a decoded value to a table of tables.
func tables(v any) map[string]map[string]any {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := map[string]map[string]any{}
	for k, inner := range raw {
		if t, ok := inner.(map[string]any); ok {
			out[k] = t
		}
	}
	return out
}

func stringList(v any) []string {
	switch list := v.(type) {
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
