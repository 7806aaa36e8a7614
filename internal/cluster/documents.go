package cluster

import (
	"path"

	"github.com/transfigure/cli/internal/output"
)

// Output layout.
const (
	SummaryFile     = "cluster.yml"
	ProxyConfigFile = "nginx.conf"
	configDir       = "config"
	secretDir       = "secret"
)

// Documents lays the model out as a manifest tree: the cluster summary,
// one file per workload and kind, shared config maps and secrets per
// namespace, and the spliced proxy configuration.
func (m *Model) Documents() []output.Document {
	docs := []output.Document{{
		Path:        SummaryFile,
		Objects:     []any{m.Summary()},
		Description: "cluster summary",
	}}

	for _, fqn := range m.FQNs() {
		d := m.Resources[fqn]
		dir := path.Join(d.Namespace, d.Name)
		byKind := map[string]int{}
		for _, obj := range d.Objects() {
			if i, ok := byKind[obj.Kind]; ok {
				docs[i].Objects = append(docs[i].Objects, obj.Object)
				continue
			}
			byKind[obj.Kind] = len(docs)
			docs = append(docs, output.Document{
				Path:        path.Join(dir, obj.Kind+".yml"),
				Objects:     []any{obj.Object},
				Description: obj.Kind,
			})
		}
		if d.ProxyBlock != "" {
			docs = append(docs, output.Document{
				Path:        path.Join(dir, ProxyConfigFile),
				Text:        unescape(d.ProxyBlock) + "\n",
				Description: "proxy location",
			})
		}
	}

	for _, cm := range m.Configuration {
		docs = append(docs, output.Document{
			Path:        path.Join(cm.Namespace, configDir, cm.Name+".yml"),
			Objects:     []any{cm},
			Description: "config map",
		})
	}
	for _, s := range m.Secrets {
		docs = append(docs, output.Document{
			Path:        path.Join(s.Namespace, secretDir, s.Name+".yml"),
			Objects:     []any{s},
			Description: "secret",
		})
	}
	for _, ns := range sortedKeys(m.ImagePullSecrets) {
		for _, registry := range sortedKeys(m.ImagePullSecrets[ns]) {
			s := m.ImagePullSecrets[ns][registry]
			docs = append(docs, output.Document{
				Path:        path.Join(ns, secretDir, s.Name+".yml"),
				Objects:     []any{s},
				Description: "image pull secret for " + registry,
			})
		}
	}

	if m.proxyConfig != "" {
		docs = append(docs, output.Document{
			Path:        ProxyConfigFile,
			Text:        m.proxyConfig,
			Description: "proxy configuration",
		})
	}
	return docs
}

// Summary describes the model.
func (m *Model) Summary() output.Summary {
	s := output.Summary{
		APIVersion: m.APIVersion,
		Scale:      m.opts.Scale,
		ScaleOrder: m.ScaleOrder,
		Namespaces: m.Namespaces,
		Levels:     m.Levels,
		Order:      m.Order,
		Workloads:  []output.WorkloadSummary{},
	}
	if m.splice != nil {
		s.ProxyConfig = m.splice.configMap.Namespace + "/" + m.splice.configMap.Name
	}
	for _, fqn := range m.FQNs() {
		d := m.Resources[fqn]
		w := output.WorkloadSummary{
			FQN:        fqn,
			Namespace:  d.Namespace,
			Level:      d.Level,
			Controller: d.Controller(),
			Services:   len(d.Services),
			Proxy:      d.ProxyBlock != "",
		}
		w.Replicas = replicas(d)
		s.Workloads = append(s.Workloads, w)
	}
	for _, cm := range m.Configuration {
		s.ConfigMaps = append(s.ConfigMaps, cm.Namespace+"/"+cm.Name)
	}
	for _, sec := range m.Secrets {
		s.Secrets = append(s.Secrets, sec.Namespace+"/"+sec.Name)
	}
	return s
}
