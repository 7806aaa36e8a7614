package resource

import (
	"os"
	"path/filepath"
	"strings"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/output"
	"github.com/transfigure/cli/internal/spec"
	"github.com/transfigure/cli/internal/token"
)

// Proxy template defaults.
const (
	DefaultProxyRoot    = "/usr/share/nginx/html"
	DefaultProxyCert    = "/etc/nginx/cert/cert.pem"
	DefaultProxyCertKey = "/etc/nginx/cert/cert.pem"

	// LocationFile is the per-directory location template.
	LocationFile = "location.conf"
	// LocationSuffix marks named location templates: <name>.location.conf
	// or <name>.<namespace>.location.conf.
	LocationSuffix = ".location.conf"
)

const defaultLocationTemplate = `
    server {
      listen    443 ssl;
      listen    [::]:443 ssl;
      root      <%=nginxRoot%>;

      ssl on;
      ssl_certificate       "<%=certPath%>";
      ssl_certificate_key   "<%=certKey%>";

      ssl_session_cache shared:SSL:1m;
      ssl_session_timeout 10m;
      ssl_protocols TLSv1 TLSv1.1 TLSv1.2;
      ssl_ciphers HIGH:SEED:!aNULL:!eNULL:!EXPORT:!DES:!RC4:!MD5:!PSK:!RSAPSK:!aDH:!aECDH:!EDH-DSS-DES-CBC3-SHA:!KRB5-DES-CBC3-SHA:!SRP;
      ssl_prefer_server_ciphers on;

      server_name   ~^<%=subdomain%>[.].*$;

      location / {
        resolver            kube-dns.kube-system valid=1s;
        set $server         <%=fqdn%>.svc.cluster.local:<%=port%>;
        rewrite             ^/(.*) /$1 break;
        proxy_pass          http://$server;
        proxy_set_header    Host $host;
        proxy_set_header    X-Real-IP $remote_addr;
        proxy_set_header    X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header    X-Forwarded-Proto $scheme;
      }
    }`

// ProxyTemplates holds reverse proxy location templates keyed by fully
// qualified workload name.
type ProxyTemplates struct {
	templates map[string]string
	loaded    map[string]bool
}

// NewProxyTemplates returns an empty template set that falls back to the
// built-in location block.
func NewProxyTemplates() *ProxyTemplates {
	return &ProxyTemplates{templates: map[string]string{}, loaded: map[string]bool{}}
}

// Add registers a template for fqn.
func (p *ProxyTemplates) Add(fqn, text string) {
	p.templates[fqn] = text
}

// LoadDir registers the location templates found in dir for the workload
// fqn. A location.conf applies to fqn itself; otherwise every
// *.location.conf is registered under the name it encodes, defaulting the
// namespace to fqn's.
func (p *ProxyTemplates) LoadDir(dir, fqn string) error {
	if p.loaded[dir+"|"+fqn] {
		return nil
	}
	p.loaded[dir+"|"+fqn] = true

	if text, err := os.ReadFile(filepath.Join(dir, LocationFile)); err == nil {
		p.Add(fqn, string(text))
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return oerrors.NewNotFoundError("cannot read location templates", dir, err.Error())
	}
	_, namespace, _ := strings.Cut(fqn, ".")
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), LocationSuffix) {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(e.Name(), LocationSuffix), ".")
		key := parts[0] + "." + namespace
		if len(parts) > 1 {
			key = parts[0] + "." + parts[1]
		}
		text, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return oerrors.NewNotFoundError("cannot read location template", e.Name(), err.Error())
		}
		output.Debug("registered location template", "fqn", key, "file", e.Name())
		p.Add(key, string(text))
	}
	return nil
}

// Block renders the location block for a workload.
func (p *ProxyTemplates) Block(fqn, subdomain string, port int32) (string, error) {
	text, ok := p.templates[fqn]
	if !ok {
		text = defaultLocationTemplate
	}
	return token.Render(text, map[string]any{
		"nginxRoot": DefaultProxyRoot,
		"certPath":  DefaultProxyCert,
		"certKey":   DefaultProxyCertKey,
		"subdomain": subdomain,
		"fqdn":      fqn,
		"port":      port,
	})
}

func (a *Assembler) proxyBlock(t *spec.Table) (string, error) {
	proxy := a.Proxy
	if proxy == nil {
		proxy = NewProxyTemplates()
	}
	if t.Path != "" {
		if err := proxy.LoadDir(specDir(t), t.FQN()); err != nil {
			return "", err
		}
	}
	block, err := proxy.Block(t.FQN(), t.Service.Subdomain, servicePort(t))
	if err != nil {
		return "", oerrors.NewValidationError("cannot render location template: "+err.Error(), t.Path, "service.subdomain", "")
	}
	return block, nil
}
