package llm

import (
	"context"
	"fmt"
	"time"

	"tweetlab/internal/config"
)

// NewClient builds a Client for one model spec using the configured
// provider credentials.
func NewClient(ctx context.Context, spec config.ModelSpec, keys config.APIKeys, timeout time.Duration) (Client, error) {
	switch spec.Provider {
	case "openai":
		cfg := DefaultOpenAIConfig(keys.OpenAI)
		cfg.Model = spec.Model
		cfg.Timeout = timeout
		return NewOpenAIClient(cfg), nil
	case "openrouter":
		cfg := DefaultOpenRouterConfig(keys.OpenRouter)
		cfg.Model = spec.Model
		cfg.Timeout = timeout
		return NewOpenRouterClient(cfg), nil
	case "gemini":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  keys.Gemini,
			Model:   spec.Model,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q for model %q", spec.Provider, spec.Name)
	}
}
