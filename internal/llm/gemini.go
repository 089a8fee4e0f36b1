package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexanalytica/backend/internal/config"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

// GeminiGenerator calls the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini client configured once for the process lifetime.
func NewGemini(ctx context.Context, apiKey string, cfg config.ModelConfig) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Name)
	if model == "" {
		model = defaultGeminiModel
	}

	var genCfg *genai.GenerateContentConfig
	if cfg.MaxOutputToken > 0 {
		genCfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(cfg.MaxOutputToken)}
	}

	return &GeminiGenerator{client: client, model: model, config: genCfg}, nil
}

// Generate sends prompt as a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Model implements Generator.
func (g *GeminiGenerator) Model() string {
	return "gemini/" + g.model
}
