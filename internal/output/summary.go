package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Summary describes a resolved cluster.
type Summary struct {
	APIVersion  string            `json:"apiVersion" yaml:"apiVersion"`
	Scale       string            `json:"scale,omitempty" yaml:"scale,omitempty"`
	ScaleOrder  []string          `json:"scaleOrder,omitempty" yaml:"scaleOrder,omitempty"`
	Namespaces  []string          `json:"namespaces" yaml:"namespaces"`
	Levels      []int             `json:"levels" yaml:"levels"`
	Order       map[int][]string  `json:"order" yaml:"order"`
	Workloads   []WorkloadSummary `json:"workloads" yaml:"workloads"`
	ConfigMaps  []string          `json:"configMaps,omitempty" yaml:"configMaps,omitempty"`
	Secrets     []string          `json:"secrets,omitempty" yaml:"secrets,omitempty"`
	ProxyConfig string            `json:"proxyConfig,omitempty" yaml:"proxyConfig,omitempty"`
}

// WorkloadSummary is one definition of the summary.
type WorkloadSummary struct {
	FQN        string `json:"fqn" yaml:"fqn"`
	Namespace  string `json:"namespace" yaml:"namespace"`
	Level      int    `json:"level" yaml:"level"`
	Controller string `json:"controller,omitempty" yaml:"controller,omitempty"`
	Replicas   int32  `json:"replicas,omitempty" yaml:"replicas,omitempty"`
	Services   int    `json:"services,omitempty" yaml:"services,omitempty"`
	Proxy      bool   `json:"proxy,omitempty" yaml:"proxy,omitempty"`
}

// RenderSummaryTable renders the workloads of s as a table.
func RenderSummaryTable(s Summary) string {
	t := NewTable("WORKLOAD", "NAMESPACE", "LEVEL", "CONTROLLER", "REPLICAS", "SERVICES", "PROXY")
	for _, w := range s.Workloads {
		replicas := "-"
		if w.Replicas > 0 {
			replicas = strconv.Itoa(int(w.Replicas))
		}
		proxy := ""
		if w.Proxy {
			proxy = "yes"
		}
		controller := w.Controller
		if controller == "" {
			controller = "-"
		}
		t.Row(w.FQN, w.Namespace, strconv.Itoa(w.Level), controller, replicas, strconv.Itoa(w.Services), proxy)
	}
	return t.String()
}

// WriteSummary writes s to w in the given format.
func WriteSummary(w io.Writer, s Summary, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, RenderSummaryTable(s))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, StyleSummary.Render(fmt.Sprintf("%s in %s, api %s",
			FormatCount(len(s.Workloads), "workload"), FormatCount(len(s.Namespaces), "namespace"), s.APIVersion)))
		return err
	}
}
