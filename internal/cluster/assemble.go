package cluster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/resource"
	"github.com/transfigure/cli/internal/scale"
	"github.com/transfigure/cli/internal/spec"
	"github.com/transfigure/cli/internal/token"
)

// Proxy configuration splice.
const (
	// ProxyConfigKey is the config map key of the shared proxy configuration.
	ProxyConfigKey = "nginx.conf"
	// SplicePlaceholder marks where the location blocks are spliced in.
	SplicePlaceholder = "$SERVER_DEFINITIONS$"
)

// Assemble builds one definition per specification file under the root,
// in lexical order, and adds it to the model. Files mounted into config
// maps are content, not specifications, and are skipped.
func (m *Model) Assemble(ctx context.Context) error {
	if m.finalized {
		return ErrFinalized
	}
	files, err := token.SourceFiles(m.Root)
	if err != nil {
		return err
	}
	mounted := m.mountedFiles(files)

	asm := &resource.Assembler{
		Versions: m.versions,
		Secrets:  m,
		Config:   m,
		Proxy:    resource.NewProxyTemplates(),
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if filepath.Base(file) == File || mounted[file] {
			continue
		}
		d, err := m.build(asm, file)
		if err != nil {
			return err
		}
		if err := m.Add(d); err != nil {
			return err
		}
	}
	output.Debug("assembled cluster", "root", m.Root, "definitions", len(m.Resources), "pending splices", len(m.pending))
	return nil
}

func (m *Model) build(asm *resource.Assembler, file string) (*resource.Definition, error) {
	if !strings.HasSuffix(file, ".toml") {
		return resource.Raw(file, m.opts.Data)
	}
	t, err := spec.Load(file, spec.LoadOptions{Data: m.opts.Data})
	if err != nil {
		return nil, err
	}
	var tiers map[string]string
	if entry, ok := m.Entries[t.FQN()]; ok {
		tiers = entry.Tiers
	}
	eff := scale.Apply(t, m.opts.Scale, m.ScaleOrder, tiers)
	output.Debug("resolved scale", "fqn", t.FQN(), "tier", m.opts.Scale, "containers", eff.Containers)
	return asm.Build(t)
}

// mountedFiles lists the specification-looking files that workloads mount
// through config map volumes.
func (m *Model) mountedFiles(files []string) map[string]bool {
	mounted := map[string]bool{}
	for _, file := range files {
		if !strings.HasSuffix(file, ".toml") || filepath.Base(file) == File {
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		text := string(content)
		if token.HasTokens(text) {
			if text, err = token.Render(text, m.opts.Data); err != nil {
				continue
			}
		}
		var refs struct {
			Volumes map[string]string `toml:"volumes"`
		}
		if _, err := toml.Decode(text, &refs); err != nil {
			continue
		}
		for _, expr := range refs.Volumes {
			_, items := grammar.ConfigItems(expr)
			for _, item := range items {
				mounted[filepath.Join(filepath.Dir(file), item.Key)] = true
			}
		}
	}
	return mounted
}

// AddConfigFile renders a mounted file with the token data and stores it in
// its shared config map. A proxy configuration holding the splice
// placeholder becomes the splice target.
func (m *Model) AddConfigFile(f resource.ConfigFile) error {
	if m.finalized {
		return ErrFinalized
	}
	content, err := os.ReadFile(f.Source)
	if err != nil {
		return oerrors.NewNotFoundError(fmt.Sprintf("cannot read file %q mounted into config map %s", f.Key, f.Map),
			f.Source, "create the file next to the specification that mounts it")
	}
	text := string(content)
	if token.HasTokens(text) {
		if text, err = token.Render(text, m.opts.Data); err != nil {
			return oerrors.NewValidationError(fmt.Sprintf("cannot render mounted file: %v", err), f.Source, "", "")
		}
	}
	cm := m.configMap(f.Namespace, f.Map)
	cm.Data[f.Key] = text
	if f.Key == ProxyConfigKey && strings.Contains(text, SplicePlaceholder) {
		output.Debug("registered proxy configuration", "namespace", f.Namespace, "configMap", f.Map)
		m.splice = &spliceTarget{configMap: cm, key: f.Key}
	}
	return nil
}

// Finalize splices every pending proxy block, ordered by fqn and separated
// by a blank line, into the registered proxy configuration. It runs once;
// later calls return ErrFinalized.
func (m *Model) Finalize() error {
	if m.finalized {
		return ErrFinalized
	}
	m.finalized = true

	if m.splice == nil {
		if len(m.pending) > 0 {
			output.Warn("proxy blocks declared but no proxy configuration holds "+SplicePlaceholder, "blocks", len(m.pending))
		}
		return nil
	}

	sort.Slice(m.pending, func(i, j int) bool { return m.pending[i].fqn < m.pending[j].fqn })
	blocks := make([]string, 0, len(m.pending))
	for _, p := range m.pending {
		blocks = append(blocks, unescape(p.block))
	}

	cm, key := m.splice.configMap, m.splice.key
	spliced := strings.Replace(cm.Data[key], SplicePlaceholder, strings.Join(blocks, "\n\n"), 1)
	cm.Data[key] = unescape(spliced)
	m.proxyConfig = cm.Data[key]
	m.pending = nil
	output.Debug("finalized proxy configuration", "namespace", cm.Namespace, "configMap", cm.Name, "blocks", len(blocks))
	return nil
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\n`, "\n")
}
