package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/question"
)

// NewTextGenerator creates the configured provider wrapped with instrumentation.
func NewTextGenerator(ctx context.Context, cfg Config, logger zerolog.Logger) (question.TextGenerator, error) {
	var (
		base question.TextGenerator
		err  error
	)

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderHTTP
	}

	switch provider {
	case ProviderHTTP:
		base, err = NewHTTPGenerator(cfg, &http.Client{})
	case ProviderGemini:
		base, err = NewGeminiGenerator(ctx, cfg)
	case ProviderOpenAI:
		base, err = NewOpenAIGenerator(cfg)
	case ProviderAnthropic:
		base, err = NewAnthropicGenerator(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", provider, err)
	}

	return WithInstrumentation(base, provider, cfg.Timeout, logger), nil
}
