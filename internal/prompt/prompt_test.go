package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tmpl, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "legal-v5", tmpl.Version)
	sections := []string{
		"### 1. Case Docket",
		"### 2. Legal Brief",
		"### 3. Case Timeline",
		"### 4. Critical Analysis",
		"### 5. Viva Voce & Study Guide",
		"### 6. Final Assessment",
		"### 7. Key Statutes & Provisions",
		"### 8. Precedents Cited",
		"### 9. Practical Implications",
		"### 10. Exam & Moot Court Relevance",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(tmpl.Text, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
	// scores keep their markdown hard line breaks
	assert.Contains(t, tmpl.Text, "SCORE: 82/100  \n")
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: short-1\ntemplate: |\n  Summarise the judgment.\n"), 0644))

	tmpl, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "short-1", tmpl.Version)
	assert.Equal(t, "Summarise the judgment.\n", tmpl.Text)

	def, err := LoadOrDefault("  ")
	require.NoError(t, err)
	assert.Equal(t, "legal-v5", def.Version)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty text", input: "version: v1\ntemplate: \"  \"\n"},
		{name: "bad yaml", input: "template: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParse_DefaultsVersion(t *testing.T) {
	tmpl, err := Parse(strings.NewReader("template: hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "unversioned", tmpl.Version)
}

func TestBuild_TemplateFirst(t *testing.T) {
	tmpl := &Template{Version: "v", Text: "INSTRUCTIONS\n"}
	got := tmpl.Build("\n\n--- DOCUMENT: a.pdf ---\n\nbody")
	assert.Equal(t, "INSTRUCTIONS\n\n\n--- DOCUMENT: a.pdf ---\n\nbody", got)
}
