// tweetlab is a Twitter archive analytics pipeline: it parses an
// archive export, engineers engagement features, picks the best cheap
// LLM for content classification against a ground-truth model, and
// classifies the full archive with resumable progress.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tweetlab/internal/config"
	"tweetlab/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tweetlab",
	Short: "tweetlab - Twitter archive engagement and content analysis",
	Long: `tweetlab analyzes a Twitter archive export end to end:

  1. engineer:     parse the archive and derive engagement features
  2. select-model: score candidate LLMs against a ground-truth model
  3. classify:     label every tweet with the selected model (resumable)
  4. stats:        summarize engagement by account tier and by label

Configuration comes from a YAML file plus environment variables for
API keys (OPENAI_API_KEY, OPENROUTER_API_KEY, GEMINI_API_KEY).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logCfg := logging.Config{
			Enabled:    cfg.Logging.Enabled,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.JSONFormat,
			Dir:        cfg.Logging.Dir,
		}
		if verbose {
			logCfg.Level = "debug"
		}
		if err := logging.Initialize(logCfg); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		logging.Boot("command: %s config: %s", cmd.Name(), configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tweetlab.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(engineerCmd)
	rootCmd.AddCommand(selectModelCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
