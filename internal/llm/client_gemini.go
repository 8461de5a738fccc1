package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"tweetlab/internal/logging"
)

// GeminiClient implements Client for the Gemini API via the official
// genai SDK. The response schema constrains output to the label shape so
// parsing rarely needs the fence-stripping fallback.
type GeminiClient struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, &APIError{Provider: "gemini", Message: "API key not configured"}
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash-lite"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   config.Model,
		timeout: config.Timeout,
	}, nil
}

// labelsSchema constrains Gemini output to the Labels shape.
func labelsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"humor_type":          {Type: genai.TypeString, Enum: HumorTypes},
			"topic_category":      {Type: genai.TypeString, Enum: TopicCategories},
			"has_data_reference":  {Type: genai.TypeBoolean},
			"shows_vulnerability": {Type: genai.TypeBoolean},
			"critique_type":       {Type: genai.TypeString, Enum: CritiqueTypes},
		},
		Required: []string{
			"humor_type", "topic_category", "has_data_reference",
			"shows_vulnerability", "critique_type",
		},
	}
}

// Classify sends one classification request.
func (c *GeminiClient) Classify(ctx context.Context, tweetText string) (*Labels, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.mu.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < minRequestSpacing {
		time.Sleep(minRequestSpacing - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(BuildPrompt(tweetText)),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0)),
			ResponseMIMEType: "application/json",
			ResponseSchema:   labelsSchema(),
		},
	)
	if err != nil {
		logging.APIError("[Gemini] classify failed after %v: %v", time.Since(start), err)
		// The SDK surfaces rate limits and server errors as genai.APIError.
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, newAPIError("gemini", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &APIError{Provider: "gemini", Message: "no completion returned"}
	}
	logging.APIDebug("[Gemini] classify ok in %v model=%s", time.Since(start), c.model)
	return ParseLabels(text)
}

// Model returns the provider-side model id.
func (c *GeminiClient) Model() string {
	return c.model
}
