package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundleJSON = `{
  "source": {"id": "src", "name": "old", "source_type_id": "1"},
  "endpoints": [{"id": "ep1", "scheme": "https", "host": "redhat.com", "availability_status_error": "endpoint error"}],
  "authentications": [{"id": "9"}],
  "applications": [
    {"id": "10", "application_type_id": "3", "authentications": [{"id": "9", "resource_type": "Endpoint"}]}
  ]
}`

const catalogYAML = `
source_types:
  - id: "1"
    name: openshift
application_types:
  - id: "2"
    name: /insights/platform/cost-management
  - id: "3"
    name: /insights/platform/catalog
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	actual := make(map[string]bool)
	for _, cmd := range NewRootCmd().Commands() {
		actual[cmd.Name()] = true
	}

	for _, expected := range []string{"serve", "plan", "aggregate", "version"} {
		assert.True(t, actual[expected], "missing subcommand %q", expected)
	}
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "bundle.json", bundleJSON)
	values := writeFile(t, dir, "values.json", `{"url": "https://new.example.com:8443", "source": {"name": "renamed"}}`)
	edited := writeFile(t, dir, "edited.json", `{"url": true, "source.name": true}`)
	catalogFile := writeFile(t, dir, "catalog.yaml", catalogYAML)

	out, err := execute(t, "plan", "--bundle", bundle, "--values", values, "--edited", edited, "--catalog", catalogFile)
	require.NoError(t, err)

	var plan map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, []any{"check-endpoint-10"}, plan["targets"])
	assert.Equal(t, map[string]any{"name": "renamed"}, plan["source"])
	assert.Equal(t, "ep1", plan["endpoint_id"])
	assert.EqualValues(t, 8443, plan["endpoint"].(map[string]any)["port"])
}

func TestPlanCommand_InvalidFlags(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "bundle.json", bundleJSON)

	_, err := execute(t, "plan", "--bundle", bundle)
	assert.ErrorContains(t, err, "invalid flags")

	_, err = execute(t, "plan", "--bundle", bundle, "--values", filepath.Join(dir, "missing.json"), "--edited", bundle)
	assert.ErrorContains(t, err, "invalid flags")
}

func TestPlanCommand_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "bundle.json", bundleJSON)
	broken := writeFile(t, dir, "values.json", `{"url": `)

	_, err := execute(t, "plan", "--bundle", bundle, "--values", broken, "--edited", broken)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestAggregateCommand(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "bundle.json", bundleJSON)
	catalogFile := writeFile(t, dir, "catalog.yaml", catalogYAML)

	out, err := execute(t, "aggregate", "--bundle", bundle, "--catalog", catalogFile)
	require.NoError(t, err)

	var result aggregateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "https://redhat.com", result.Values["url"])
	assert.Equal(t, "openshift", result.Values["source_type"])
	assert.Contains(t, result.Values["authentications"], "a9")
	require.Contains(t, result.Messages, "10")
	assert.Equal(t, "endpoint error", result.Messages["10"].Description)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sourcedit")
}
