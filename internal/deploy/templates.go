package deploy

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ecosystemTemplate is the pm2 process descriptor. The license credential
// is embedded under its configured environment variable name so the
// supervised process sees it without any shell profile involvement.
const ecosystemTemplate = `module.exports = {
  apps: [
    {
      name: {{js .Project}},
      cwd: {{js .ProjectDir}},
      script: "./start.sh",
      interpreter: "bash",
      autorestart: true,
      env: {
        {{.LicenseEnv}}: {{js .LicenseKey}},
      },
    },
  ],
};
`

// startScriptTemplate activates the project virtualenv and replaces
// itself with the application process. The config path is derived from
// the project name so pm2 restarts survive renames of nothing but code.
const startScriptTemplate = `#!/usr/bin/env bash
set -euo pipefail
cd {{sh .ProjectDir}}
source venv/bin/activate
exec {{.Python}} {{sh .AppScript}} --config {{sh .ConfigPath}}
`

// DescriptorParams feeds both templates.
type DescriptorParams struct {
	Project    string
	ProjectDir string
	LicenseEnv string
	LicenseKey string
	Python     string
	AppScript  string
	ConfigPath string
}

var templateFuncs = template.FuncMap{
	// js renders a double-quoted JS string literal.
	"js": func(s string) string {
		return fmt.Sprintf("%q", s)
	},
	// sh single-quotes a shell word.
	"sh": func(s string) string {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	},
}

// RenderEcosystem produces ecosystem.config.js.
func RenderEcosystem(p DescriptorParams) ([]byte, error) {
	return render("ecosystem", ecosystemTemplate, p)
}

// RenderStartScript produces the executable start.sh launcher.
func RenderStartScript(p DescriptorParams) ([]byte, error) {
	return render("start", startScriptTemplate, p)
}

func render(name, text string, p DescriptorParams) ([]byte, error) {
	t, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}
