// Package llm wraps the generative-model providers behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lexanalytica/backend/internal/config"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces free-form text from a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Model identifies the provider and model, e.g. "gemini/gemini-1.5-flash-latest".
	Model() string
}

// New builds the Generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.ModelConfig, apiKey string) (Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("model api key is empty")
	}

	switch normalizeProviderType(cfg.Provider) {
	case "", "gemini", "google":
		return NewGemini(ctx, apiKey, cfg)
	case "openai", "anthropic":
		return NewJetify(apiKey, cfg)
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}
