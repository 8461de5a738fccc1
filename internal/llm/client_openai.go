package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"tweetlab/internal/logging"
)

// OpenAIClient implements Client for the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	mu          sync.Mutex
	lastRequest time.Time
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 120 * time.Second,
	}
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// chatMessage is a message in an OpenAI-compatible conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is an OpenAI-compatible chat completions request.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat requests structured JSON output.
type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

// chatResponse is an OpenAI-compatible chat completions response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// labelsResponseFormat is the structured output schema for Labels.
func labelsResponseFormat() *responseFormat {
	enum := func(values []string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "enum": values}
	}
	return &responseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchemaSpec{
			Name:   "tweet_classification",
			Strict: true,
			Schema: map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"humor_type":          enum(HumorTypes),
					"topic_category":      enum(TopicCategories),
					"has_data_reference":  map[string]interface{}{"type": "boolean"},
					"shows_vulnerability": map[string]interface{}{"type": "boolean"},
					"critique_type":       enum(CritiqueTypes),
				},
				"required": []string{
					"humor_type", "topic_category", "has_data_reference",
					"shows_vulnerability", "critique_type",
				},
			},
		},
	}
}

// Classify sends one classification request.
func (c *OpenAIClient) Classify(ctx context.Context, tweetText string) (*Labels, error) {
	raw, err := c.complete(ctx, BuildPrompt(tweetText))
	if err != nil {
		return nil, err
	}
	return ParseLabels(raw)
}

// Model returns the provider-side model id.
func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &APIError{Provider: "openai", Message: "API key not configured"}
	}

	// Pace requests so concurrent workers do not burst.
	c.mu.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < minRequestSpacing {
		time.Sleep(minRequestSpacing - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:      1024,
		Temperature:    0,
		ResponseFormat: labelsResponseFormat(),
	}

	start := time.Now()
	raw, err := doChatRequest(ctx, c.httpClient, "openai", c.baseURL, c.apiKey, nil, reqBody)
	if err != nil {
		logging.APIError("[OpenAI] complete failed after %v: %v", time.Since(start), err)
		return "", err
	}
	logging.APIDebug("[OpenAI] complete ok in %v model=%s", time.Since(start), c.model)
	return raw, nil
}

// doChatRequest executes one OpenAI-compatible chat completions call and
// returns the first choice's content. Shared by the OpenAI and
// OpenRouter clients.
func doChatRequest(ctx context.Context, httpClient *http.Client, provider, baseURL, apiKey string,
	extraHeaders map[string]string, reqBody chatRequest) (string, error) {

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(provider, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return "", &APIError{Provider: provider, Message: chatResp.Error.Message}
	}
	if len(chatResp.Choices) == 0 {
		return "", &APIError{Provider: provider, Message: "no completion returned"}
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
