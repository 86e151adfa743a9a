package llm

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GenerationConfig is the baseline sampling configuration.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Effective returns a copy of the baseline with per-call overrides merged in.
func (g GenerationConfig) Effective(opts ...CallOption) GenerationConfig {
	out := g
	if t, ok := TemperatureOf(opts...); ok {
		out.Temperature = t
	}
	return out
}

type GeminiConfig struct {
	APIKey     string
	ModelStems []string
	Generation GenerationConfig
}

// GeminiClient is a thin wrapper around the official genai client bound to one model.
type GeminiClient struct {
	cli   *genai.Client
	model string
	base  GenerationConfig
}

// NewGeminiClient connects, lists the models that support content generation
// and binds the first priority match for the lifetime of the client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	var available []ModelInfo
	for m, err := range cli.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if m == nil {
			continue
		}
		available = append(available, ModelInfo{Name: m.Name, SupportedActions: m.SupportedActions})
	}
	model, err := SelectModel(cfg.ModelStems, available)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model, base: cfg.Generation}, nil
}

func (g *GeminiClient) Name() string {
	if g == nil {
		return "Gemini:<nil>"
	}
	return "Gemini:" + g.model
}

func (g *GeminiClient) Close() error { return nil }

// Generate sends prompt as a single user turn and returns the trimmed text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	if g == nil || g.cli == nil || g.model == "" {
		return "", errNotInitialized()
	}
	eff := g.base.Effective(opts...)
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(eff.Temperature),
			TopP:            genai.Ptr(eff.TopP),
			MaxOutputTokens: eff.MaxOutputTokens,
		},
	)
	if err != nil {
		return "", errTransport(err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errIncomplete()
	}
	var sb strings.Builder
	parts := 0
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p == nil {
				continue
			}
			parts++
			sb.WriteString(p.Text)
		}
	}
	if parts > 0 {
		return strings.TrimSpace(sb.String()), nil
	}
	if resp.PromptFeedback != nil {
		return "", errBlocked(string(resp.PromptFeedback.BlockReason))
	}
	return "", errIncomplete()
}
