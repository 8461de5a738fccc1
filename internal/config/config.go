// Package config holds all tweetlab configuration.
// Configuration is loaded from a YAML file, with environment variables
// overriding secrets so API keys never need to live on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tweetlab configuration.
type Config struct {
	// Archive input
	Archive ArchiveConfig `yaml:"archive"`

	// Feature engineering
	Features FeaturesConfig `yaml:"features"`

	// LLM providers and models
	LLM LLMConfig `yaml:"llm"`

	// Model evaluation
	Eval EvalConfig `yaml:"eval"`

	// Classification run
	Classify ClassifyConfig `yaml:"classify"`

	// Dataset store
	Store StoreConfig `yaml:"store"`

	// Output tables
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ArchiveConfig configures the archive loader.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// TierBoundary names a tier and the inclusive date it starts on.
// The first tier has an empty start and covers everything before the
// second tier's start.
type TierBoundary struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"` // YYYY-MM-DD, empty for the first tier
}

// FeaturesConfig configures feature engineering.
type FeaturesConfig struct {
	// OwnerUserID is the archive owner's user id. When empty it is
	// inferred from the archive (screen name match, then author-id mode,
	// then most common reply target).
	OwnerUserID     string `yaml:"owner_user_id"`
	OwnerScreenName string `yaml:"owner_screen_name"`

	// WinsorizePercentile caps total_engagement at this percentile of
	// the full engineered set.
	WinsorizePercentile float64 `yaml:"winsorize_percentile"`

	// Tiers are ordered account tiers with inclusive start dates.
	Tiers []TierBoundary `yaml:"tiers"`
}

// ModelSpec identifies one model at one provider.
type ModelSpec struct {
	Name     string `yaml:"name"`     // short identifier used in outputs
	Provider string `yaml:"provider"` // openai, openrouter, gemini
	Model    string `yaml:"model"`    // provider-side model id
	// CostPer1K is the estimated cost per 1k tokens, used only to break
	// agreement-score ties. Zero means unknown.
	CostPer1K float64 `yaml:"cost_per_1k"`
}

// APIKeys holds provider credentials. Normally populated from the
// environment, not the config file.
type APIKeys struct {
	OpenAI     string `yaml:"openai"`
	OpenRouter string `yaml:"openrouter"`
	Gemini     string `yaml:"gemini"`
}

// LLMConfig configures the LLM clients.
type LLMConfig struct {
	Keys        APIKeys     `yaml:"keys"`
	GroundTruth ModelSpec   `yaml:"ground_truth"`
	Candidates  []ModelSpec `yaml:"candidates"`
	Timeout     string      `yaml:"timeout"`      // per-request timeout
	MaxRetries  int         `yaml:"max_retries"`  // transient failure retries
	BaseBackoff string      `yaml:"base_backoff"` // first retry delay
}

// EvalConfig configures model selection.
type EvalConfig struct {
	SampleSize    int    `yaml:"sample_size"`
	MinTextLength int    `yaml:"min_text_length"`
	Seed          int64  `yaml:"seed"`
	ResultsPath   string `yaml:"results_path"`
	SelectedPath  string `yaml:"selected_path"`
}

// ClassifyConfig configures the classification runner.
type ClassifyConfig struct {
	Workers       int    `yaml:"workers"`
	MinTextLength int    `yaml:"min_text_length"`
	ProgressPath  string `yaml:"progress_path"`
	OutputPath    string `yaml:"output_path"`
	MetadataPath  string `yaml:"metadata_path"`
}

// StoreConfig configures the SQLite dataset store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// OutputConfig configures summary table outputs.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Level      string `yaml:"level"`
	JSONFormat bool   `yaml:"json_format"`
	Dir        string `yaml:"dir"`
}

// DefaultConfig returns a config with sensible defaults matching the
// original analysis: 95th percentile winsorization, the two account tier
// changes, and the original candidate model set.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			Path: "data/twitter_archive.json",
		},
		Features: FeaturesConfig{
			WinsorizePercentile: 0.95,
			Tiers: []TierBoundary{
				{Name: "tier_pre_upgrade", Start: ""},
				{Name: "tier_upgraded", Start: "2023-09-12"},
				{Name: "tier_post_upgrade", Start: "2024-09-12"},
			},
		},
		LLM: LLMConfig{
			GroundTruth: ModelSpec{
				Name:     "gpt-5",
				Provider: "openrouter",
				Model:    "openai/gpt-5",
			},
			Candidates: []ModelSpec{
				{Name: "gpt-4o-mini", Provider: "openai", Model: "gpt-4o-mini", CostPer1K: 0.00015},
				{Name: "gemini-2.5-flash-lite", Provider: "gemini", Model: "gemini-2.5-flash-lite", CostPer1K: 0.0001},
				{Name: "deepseek-chat", Provider: "openrouter", Model: "deepseek/deepseek-chat", CostPer1K: 0.00014},
			},
			Timeout:     "120s",
			MaxRetries:  3,
			BaseBackoff: "1s",
		},
		Eval: EvalConfig{
			SampleSize:    20,
			MinTextLength: 20,
			Seed:          42,
			ResultsPath:   "data/model_selection_results.csv",
			SelectedPath:  "data/selected_model.txt",
		},
		Classify: ClassifyConfig{
			Workers:       5,
			MinTextLength: 15,
			ProgressPath:  "data/classification_progress.jsonl",
			OutputPath:    "data/tweet_classifications.csv",
			MetadataPath:  "data/classification_metadata.json",
		},
		Store: StoreConfig{
			DatabasePath: "data/tweetlab.db",
		},
		Output: OutputConfig{
			Dir: "data/summaries",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			Dir:     "logs",
		},
	}
}

// Load reads config from path, merges it over defaults, applies
// environment overrides and validates the result. A missing file is not
// an error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior.
func (c *Config) Validate() error {
	if c.Features.WinsorizePercentile <= 0 || c.Features.WinsorizePercentile > 1 {
		return fmt.Errorf("winsorize_percentile must be in (0, 1], got %v", c.Features.WinsorizePercentile)
	}
	if len(c.Features.Tiers) == 0 {
		return fmt.Errorf("at least one account tier is required")
	}
	var prev time.Time
	for i, tier := range c.Features.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier %d has no name", i)
		}
		if i == 0 {
			if tier.Start != "" {
				return fmt.Errorf("first tier %q must not have a start date", tier.Name)
			}
			continue
		}
		if tier.Start == "" {
			return fmt.Errorf("tier %q has no start date", tier.Name)
		}
		start, err := time.Parse("2006-01-02", tier.Start)
		if err != nil {
			return fmt.Errorf("tier %q has invalid start date %q: %w", tier.Name, tier.Start, err)
		}
		if i > 1 && !start.After(prev) {
			return fmt.Errorf("tier %q start %s is not after previous tier start", tier.Name, tier.Start)
		}
		prev = start
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if _, err := c.RetryBackoff(); err != nil {
		return err
	}
	if c.Classify.Workers < 1 {
		return fmt.Errorf("classify workers must be at least 1, got %d", c.Classify.Workers)
	}
	if c.Eval.SampleSize < 1 {
		return fmt.Errorf("eval sample_size must be at least 1, got %d", c.Eval.SampleSize)
	}
	return nil
}

// RequestTimeout parses the per-request LLM timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid llm timeout %q: %w", c.LLM.Timeout, err)
	}
	return d, nil
}

// RetryBackoff parses the first retry delay.
func (c *Config) RetryBackoff() (time.Duration, error) {
	d, err := time.ParseDuration(c.LLM.BaseBackoff)
	if err != nil {
		return 0, fmt.Errorf("invalid llm base_backoff %q: %w", c.LLM.BaseBackoff, err)
	}
	return d, nil
}
