package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/tailored-agentic-units/ucf/backend/anthropic"
	_ "github.com/tailored-agentic-units/ucf/backend/gemini"
	"github.com/tailored-agentic-units/ucf/observability"
)

var (
	configFile   string
	verbose      bool
	backendName  string
	patternFile  string
	auditPath    string
	autoApprove  bool
	noGate       bool
	useAnthropic bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ucf",
	Short: "Conversational orchestration with lane routing and command approval",
	Long: `ucf routes each message to a strategic or implementation lane, asks the
configured completion backend for a reply, and holds back any command the reply
proposes until it is approved.

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		observability.RegisterObserver("zap", observability.NewZapObserver(logger))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <message>",
	Short: "Explain which lane a message would be routed to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "", "Completion backend provider (overrides config)")
	rootCmd.PersistentFlags().StringVar(&patternFile, "patterns", "", "YAML lane pattern file, reloaded on change")
	rootCmd.PersistentFlags().StringVar(&auditPath, "audit", "", "SQLite file recording approval decisions")
	rootCmd.PersistentFlags().BoolVar(&autoApprove, "auto-approve", false, "Approve every proposed command")
	rootCmd.PersistentFlags().BoolVar(&noGate, "no-gate", false, "Do not scan replies for commands")
	rootCmd.PersistentFlags().BoolVar(&useAnthropic, "anthropic", false, "Install the Anthropic extension (reads ANTHROPIC_API_KEY)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
