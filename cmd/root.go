package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/config"
)

var cfg *config.Config

// Per-invocation credential overrides. The configured SPYSAGE_ values
// act as the shared system defaults beneath these.
var (
	anthropicKeyFlag  string
	openrouterKeyFlag string
	notionTokenFlag   string
	slackTokenFlag    string
	twitterTokenFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "spysage",
	Short: "Competitor change monitoring pipeline",
	Long:  "Polls competitor changelog pages, detects content changes, enriches them with LLM summaries and categories, and fans notifications out to Notion, Slack, and email.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&anthropicKeyFlag, "anthropic-key", "", "Anthropic API key (overrides configured key)")
	pf.StringVar(&openrouterKeyFlag, "openrouter-key", "", "OpenRouter API key (overrides configured key)")
	pf.StringVar(&notionTokenFlag, "notion-token", "", "Notion integration token (overrides configured token)")
	pf.StringVar(&slackTokenFlag, "slack-token", "", "Slack bot token (overrides configured token)")
	pf.StringVar(&twitterTokenFlag, "twitter-token", "", "Twitter bearer token (overrides configured token)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
