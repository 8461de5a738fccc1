package config

import "os"

// Environment variables that override config file values. Secrets should
// come from the environment, never the config file.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvArchivePath   = "TWEETLAB_ARCHIVE"
	EnvDatabasePath  = "TWEETLAB_DB"
)

// ApplyEnvOverrides overlays environment variables onto the config.
// A set variable always wins over the file value.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		c.LLM.Keys.OpenAI = v
	}
	if v := os.Getenv(EnvOpenRouterKey); v != "" {
		c.LLM.Keys.OpenRouter = v
	}
	if v := os.Getenv(EnvGeminiKey); v != "" {
		c.LLM.Keys.Gemini = v
	}
	if v := os.Getenv(EnvArchivePath); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Store.DatabasePath = v
	}
}
