package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator completes prompts with the Google Gemini SDK.
type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:    client,
		model:     resolveModel(ProviderGemini, cfg.Model),
		maxTokens: int32(cfg.maxTokens()),
	}, nil
}

func (g *GeminiGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in Gemini response")
	}
	return text, nil
}
