package deploy_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlift-sh/airlift/internal/deploy"
)

func sampleParams() deploy.DescriptorParams {
	return deploy.DescriptorParams{
		Project:    "airtouch-exporter",
		ProjectDir: "/home/deploy/airtouch-exporter",
		LicenseEnv: "NEW_RELIC_LICENSE_KEY",
		LicenseKey: "eu01xx0123456789",
		Python:     "python3",
		AppScript:  "main.py",
		ConfigPath: "/home/deploy/airtouch-exporter/airtouch-exporter.yaml",
	}
}

func TestRenderEcosystem(t *testing.T) {
	t.Parallel()

	out, err := deploy.RenderEcosystem(sampleParams())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, `name: "airtouch-exporter"`)
	assert.Contains(t, content, `cwd: "/home/deploy/airtouch-exporter"`)
	assert.Contains(t, content, `script: "./start.sh"`)
	assert.Contains(t, content, `autorestart: true`)
	assert.Contains(t, content, `NEW_RELIC_LICENSE_KEY: "eu01xx0123456789"`)
}

func TestRenderEcosystemEscapesValues(t *testing.T) {
	t.Parallel()

	p := sampleParams()
	p.LicenseKey = `with"quote\and backslash`
	out, err := deploy.RenderEcosystem(p)
	require.NoError(t, err)

	// The raw key must not break out of the JS string literal.
	assert.Contains(t, string(out), `\"quote\\and`)
}

func TestRenderStartScript(t *testing.T) {
	t.Parallel()

	out, err := deploy.RenderStartScript(sampleParams())
	require.NoError(t, err)

	content := string(out)
	assert.True(t, strings.HasPrefix(content, "#!/usr/bin/env bash\n"))
	assert.Contains(t, content, "set -euo pipefail")
	assert.Contains(t, content, "cd '/home/deploy/airtouch-exporter'")
	assert.Contains(t, content, "source venv/bin/activate")
	assert.Contains(t, content, "exec python3 'main.py' --config '/home/deploy/airtouch-exporter/airtouch-exporter.yaml'")
}

func TestRenderStartScriptQuotesApostrophes(t *testing.T) {
	t.Parallel()

	p := sampleParams()
	p.ProjectDir = "/home/deploy/it's-here"
	out, err := deploy.RenderStartScript(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `'/home/deploy/it'\''s-here'`)
}
