package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalog = `---
source_types:
  - id: "1"
    name: openshift
    product_name: Red Hat OpenShift Container Platform
  - id: "2"
    name: amazon
application_types:
  - id: "{{COST_APP_ID}}"
    name: /insights/platform/cost-management
    display_name: Cost Management
    supported_source_types: [openshift, amazon]
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	loader := NewLoader(writeCatalog(t, sampleCatalog))
	loader.getenv = func(name string) string {
		if name == "COST_APP_ID" {
			return "7"
		}
		return ""
	}

	file, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(file.SourceTypes) != 2 {
		t.Errorf("Load() returned %v source types, want 2", len(file.SourceTypes))
	}
	if len(file.ApplicationTypes) != 1 {
		t.Fatalf("Load() returned %v application types, want 1", len(file.ApplicationTypes))
	}
	if got := file.ApplicationTypes[0].ID; got != "7" {
		t.Errorf("template variable expanded to %q, want 7", got)
	}
	if got := file.ApplicationTypes[0].SupportedSourceTypes; len(got) != 2 {
		t.Errorf("supported_source_types = %v, want 2 entries", got)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/catalog.yaml")
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	loader := NewLoader(writeCatalog(t, "source_types: [unclosed"))
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestExpandTemplateVariables(t *testing.T) {
	env := map[string]string{"APP_ID": "42", "PADDED": "  x  "}
	getenv := func(name string) string { return env[name] }

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single template variable",
			input:    `id: "{{APP_ID}}"`,
			expected: `id: "42"`,
		},
		{
			name:     "spaces inside braces",
			input:    `id: "{{ APP_ID }}"`,
			expected: `id: "42"`,
		},
		{
			name:     "unset variable",
			input:    `id: "{{MISSING}}"`,
			expected: `id: ""`,
		},
		{
			name:     "value is trimmed",
			input:    `{{PADDED}}`,
			expected: `x`,
		},
		{
			name:     "no template variables",
			input:    "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandTemplateVariables([]byte(tt.input), getenv)
			if string(result) != tt.expected {
				t.Errorf("expandTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}
