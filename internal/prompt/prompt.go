// Package prompt holds the versioned instruction template sent ahead of the
// extracted document text.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFiles embed.FS

const defaultTemplateFile = "templates/legal_v5.yaml"

// Template is immutable once loaded and safe for concurrent use.
type Template struct {
	Version string `yaml:"version"`
	Text    string `yaml:"template"`
}

// Default returns the built-in template.
func Default() (*Template, error) {
	f, err := templateFiles.Open(defaultTemplateFile)
	if err != nil {
		return nil, fmt.Errorf("opening embedded template: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Load reads a template override from a YAML file.
func Load(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening prompt file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// LoadOrDefault returns the template at path, or the built-in one when path is empty.
func LoadOrDefault(path string) (*Template, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes a YAML template document.
func Parse(r io.Reader) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	if strings.TrimSpace(t.Text) == "" {
		return nil, errors.New("prompt template text is empty")
	}
	if t.Version == "" {
		t.Version = "unversioned"
	}
	return &t, nil
}

// Build concatenates the template and the document buffer, template first.
func (t *Template) Build(documents string) string {
	var sb strings.Builder
	sb.Grow(len(t.Text) + len(documents))
	sb.WriteString(t.Text)
	sb.WriteString(documents)
	return sb.String()
}
