package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var templateVariable = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Loader handles loading and parsing of the catalog file
type Loader struct {
	filePath string
	getenv   func(string) string
}

// NewLoader creates a new catalog loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		getenv:   os.Getenv,
	}
}

// Load reads and parses the catalog file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return Parse(expandTemplateVariables(data, l.getenv))
}

// Parse decodes catalog YAML that has already been expanded
func Parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return file, nil
}

// expandTemplateVariables replaces {{NAME}} with the NAME environment variable.
// Unset variables expand to an empty string.
// Example: {{COST_APP_ID}} -> "2"
func expandTemplateVariables(data []byte, getenv func(string) string) []byte {
	return templateVariable.ReplaceAllFunc(data, func(match []byte) []byte {
		name := templateVariable.FindSubmatch(match)[1]
		return []byte(strings.TrimSpace(getenv(string(name))))
	})
}
