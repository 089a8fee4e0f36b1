package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/lexanalytica/backend/internal/config"
	"github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

// defaultMaxOutputTokens applies when model.max_output_tokens is unset.
// Anthropic rejects requests without an output cap.
const defaultMaxOutputTokens = 8192

var jetifyDefaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-haiku-4-5-20251001",
}

// JetifyGenerator serves the OpenAI and Anthropic providers through the
// provider-neutral go.jetify.com/ai GenerateText call.
type JetifyGenerator struct {
	model     jetapi.LanguageModel
	name      string
	maxTokens int
}

// NewJetify builds a language model for cfg.Provider ("openai" or "anthropic").
// A custom endpoint must be an absolute http(s) URL.
func NewJetify(apiKey string, cfg config.ModelConfig) (*JetifyGenerator, error) {
	provider := normalizeProviderType(cfg.Provider)
	modelID := strings.TrimSpace(cfg.Name)
	if modelID == "" {
		modelID = jetifyDefaultModels[provider]
	}

	endpoint, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	var model jetapi.LanguageModel
	switch provider {
	case "anthropic":
		opts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(apiKey), anthropicoption.WithMaxRetries(0)}
		if endpoint != nil {
			opts = append(opts, anthropicoption.WithBaseURL(endpoint.String()))
		}
		model = jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(anthropic.NewClient(opts...)))
	case "openai":
		opts := []openaioption.RequestOption{openaioption.WithAPIKey(apiKey), openaioption.WithMaxRetries(0)}
		if endpoint != nil {
			opts = append(opts, openaioption.WithBaseURL(withV1Suffix(endpoint)))
		}
		model = jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(openai.NewClient(opts...)))
	default:
		return nil, fmt.Errorf("jetify generator does not serve provider %q", cfg.Provider)
	}

	maxTokens := cfg.MaxOutputToken
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	return &JetifyGenerator{
		model:     model,
		name:      provider + "/" + modelID,
		maxTokens: maxTokens,
	}, nil
}

// Generate sends prompt as a single user message. Retries are disabled on the
// underlying clients.
func (g *JetifyGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := jetai.GenerateText(ctx,
		[]jetapi.Message{&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)}},
		jetai.WithModel(g.model),
		jetai.WithMaxOutputTokens(g.maxTokens),
	)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// Model implements Generator.
func (g *JetifyGenerator) Model() string {
	return g.name
}

// MaxOutputTokens reports the output cap sent with every request.
func (g *JetifyGenerator) MaxOutputTokens() int {
	return g.maxTokens
}

// responseText concatenates the text blocks of resp; other block kinds are ignored.
func responseText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.(*jetapi.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// parseEndpoint returns nil for an empty endpoint. Trailing slashes are dropped.
func parseEndpoint(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("model endpoint %q is not an absolute http(s) URL", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// withV1Suffix returns the OpenAI-compatible base URL, which always ends in /v1.
func withV1Suffix(u *url.URL) string {
	v := *u
	if !strings.HasSuffix(v.Path, "/v1") {
		v.Path += "/v1"
	}
	return v.String()
}
