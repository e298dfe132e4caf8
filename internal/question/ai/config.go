package ai

import "time"

// Provider names accepted by NewTextGenerator.
const (
	ProviderHTTP      = "http"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds connection details for the text generator.
type Config struct {
	Provider string

	// GeneratorURL and GeneratorKey are used by the http provider.
	GeneratorURL string
	GeneratorKey string

	// APIKey, Model and BaseURL are used by the SDK providers. BaseURL only
	// applies to openai and anthropic.
	APIKey  string
	Model   string
	BaseURL string

	Timeout   time.Duration
	MaxTokens int
}

const (
	defaultTimeout   = 20 * time.Second
	defaultMaxTokens = 1024
)

// modelAliases maps friendly names to provider model IDs.
var modelAliases = map[string]string{
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.0-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-haiku-4-5-20251001",
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through; an empty name selects the provider default.
func resolveModel(provider, name string) string {
	if name == "" {
		return defaultModels[provider]
	}
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}
