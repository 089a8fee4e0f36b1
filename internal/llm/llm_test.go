package llm

import (
	"context"
	"testing"

	"github.com/lexanalytica/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jetapi "go.jetify.com/ai/api"
)

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.ModelConfig
		wantModel string
	}{
		{
			name:      "gemini default model",
			cfg:       config.ModelConfig{Provider: "gemini"},
			wantModel: "gemini/gemini-1.5-flash-latest",
		},
		{
			name:      "empty provider falls back to gemini",
			cfg:       config.ModelConfig{Name: "gemini-2.0-flash"},
			wantModel: "gemini/gemini-2.0-flash",
		},
		{
			name:      "openai",
			cfg:       config.ModelConfig{Provider: "OpenAI", Endpoint: "https://proxy.example.com"},
			wantModel: "openai/gpt-4o-mini",
		},
		{
			name:      "anthropic with model",
			cfg:       config.ModelConfig{Provider: "anthropic", Name: "claude-sonnet-4-5"},
			wantModel: "anthropic/claude-sonnet-4-5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(context.Background(), tt.cfg, "test-key")
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, g.Model())
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), config.ModelConfig{Provider: "gemini"}, "  ")
	assert.Error(t, err)

	_, err = New(context.Background(), config.ModelConfig{Provider: "mistral"}, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported model provider "mistral"`)
}

func TestNewJetify_MaxOutputTokens(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ModelConfig
		want int
	}{
		{name: "configured", cfg: config.ModelConfig{Provider: "openai", MaxOutputToken: 2048}, want: 2048},
		{name: "unset falls back", cfg: config.ModelConfig{Provider: "anthropic"}, want: defaultMaxOutputTokens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewJetify("test-key", tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.MaxOutputTokens())
		})
	}
}

func TestNewJetify_RejectsRelativeEndpoint(t *testing.T) {
	_, err := NewJetify("test-key", config.ModelConfig{Provider: "openai", Endpoint: "localhost:8080/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an absolute http(s) URL")
}

func TestOpenAIBaseURL(t *testing.T) {
	tests := map[string]string{
		"https://api.example.com":       "https://api.example.com/v1",
		"https://api.example.com/":      "https://api.example.com/v1",
		"https://api.example.com/v1/":   "https://api.example.com/v1",
		"https://gw.example.com/openai": "https://gw.example.com/openai/v1",
	}
	for in, want := range tests {
		u, err := parseEndpoint(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, withV1Suffix(u), "input %q", in)
	}

	u, err := parseEndpoint("  ")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	text, err := responseText(&jetapi.Response{Content: []jetapi.ContentBlock{
		&jetapi.TextBlock{Text: "### 1. "},
		&jetapi.TextBlock{Text: "Case Docket"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "### 1. Case Docket", text)

	_, err = responseText(&jetapi.Response{Content: []jetapi.ContentBlock{&jetapi.TextBlock{Text: " \n"}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
