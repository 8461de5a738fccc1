package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"tweetlab/internal/logging"
)

// OpenRouterClient implements Client for the OpenRouter API, which
// fronts many providers behind an OpenAI-compatible surface. Used for
// the ground-truth model and any candidate without a first-party client.
type OpenRouterClient struct {
	apiKey      string
	baseURL     string
	model       string
	siteName    string
	httpClient  *http.Client
	mu          sync.Mutex
	lastRequest time.Time
}

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	SiteName string
}

// DefaultOpenRouterConfig returns sensible defaults.
func DefaultOpenRouterConfig(apiKey string) OpenRouterConfig {
	return OpenRouterConfig{
		APIKey:   apiKey,
		BaseURL:  "https://openrouter.ai/api/v1",
		Model:    "openai/gpt-5",
		Timeout:  120 * time.Second,
		SiteName: "tweetlab",
	}
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(config OpenRouterConfig) *OpenRouterClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://openrouter.ai/api/v1"
	}
	return &OpenRouterClient{
		apiKey:   config.APIKey,
		baseURL:  config.BaseURL,
		model:    config.Model,
		siteName: config.SiteName,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Classify sends one classification request.
func (c *OpenRouterClient) Classify(ctx context.Context, tweetText string) (*Labels, error) {
	if c.apiKey == "" {
		return nil, &APIError{Provider: "openrouter", Message: "API key not configured"}
	}

	c.mu.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < minRequestSpacing {
		time.Sleep(minRequestSpacing - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: BuildPrompt(tweetText)},
		},
		MaxTokens:      1024,
		Temperature:    0,
		ResponseFormat: labelsResponseFormat(),
	}

	headers := map[string]string{
		"X-Title": c.siteName,
	}

	start := time.Now()
	raw, err := doChatRequest(ctx, c.httpClient, "openrouter", c.baseURL, c.apiKey, headers, reqBody)
	if err != nil {
		// Some routed models reject json_schema; retry once without it.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			logging.APIDebug("[OpenRouter] structured output rejected, retrying without schema")
			reqBody.ResponseFormat = nil
			raw, err = doChatRequest(ctx, c.httpClient, "openrouter", c.baseURL, c.apiKey, headers, reqBody)
		}
	}
	if err != nil {
		logging.APIError("[OpenRouter] classify failed after %v: %v", time.Since(start), err)
		return nil, err
	}
	logging.APIDebug("[OpenRouter] classify ok in %v model=%s", time.Since(start), c.model)
	return ParseLabels(raw)
}

// Model returns the provider-side model id.
func (c *OpenRouterClient) Model() string {
	return c.model
}
