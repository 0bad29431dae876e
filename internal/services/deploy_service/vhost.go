package deployservice

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"
)

var vhostTemplate = template.Must(template.New("vhost").Parse(`
server {
    listen 80;
    server_name {{.Domain}} www.{{.Domain}};

    root {{.Root}};
    index index.html;

    location / {
        try_files $uri $uri/ /index.html;
    }
}
`))

// RenderVhost returns the nginx server block serving root for domain.
// Unknown paths fall back to /index.html for single-page applications.
func RenderVhost(domain, root string) (string, error) {
	var buf bytes.Buffer
	err := vhostTemplate.Execute(&buf, struct {
		Domain string
		Root   string
	}{domain, root})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeVhost renders the block into dir/<domain>.conf, replacing any previous file.
func writeVhost(dir, domain, root string) (string, error) {
	conf, err := RenderVhost(domain, root)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, domain+".conf")
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
