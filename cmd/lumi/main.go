// Package main provides the Lumi CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"lumi/internal/config"
	"lumi/internal/logging"
	"lumi/internal/provider"
	"lumi/internal/system"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

var (
	// Global flags
	verbose    bool
	apiKey     string
	configPath string
	modelFlag  string
	baseURL    string
	workspace  string

	// Loaded in PersistentPreRunE
	appConfig *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lumi",
	Short: "Lumi - terminal chat assistant backed by Gemini",
	Long: `Lumi is a conversational assistant for the terminal.

It keeps one conversation with the model for the lifetime of the process
and shows the exchange as a chat transcript.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
	RunE: runChat,
}

// askCmd runs exactly one turn
var askCmd = &cobra.Command{
	Use:   "ask [message...]",
	Short: "Send one message and print Lumi's reply",
	Long: `Runs a single turn through the same loop as the interactive chat.
A failed request is printed in-band as Lumi's reply.

Example:
  lumi ask "hola, ¿cómo estás?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Lumi version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lumi %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set LUMI_API_KEY / GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .lumi/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model override (default: "+config.DefaultModel+")")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API endpoint override")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when a command fails.
	logging.CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, diagnose(err))
		os.Exit(1)
	}
}

// setup loads configuration and starts logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	resolveWorkspace()

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.LLM.Model = modelFlag
	}
	if baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	appConfig = cfg

	return setupLogging(cmd, cfg.Logging)
}

func resolveWorkspace() {
	if workspace == "" {
		workspace, _ = os.Getwd()
	}
}

// setupLogging sends one-shot command logs to stderr; the TUI owns the screen
// and logs to file.
func setupLogging(cmd *cobra.Command, logCfg config.LoggingConfig) error {
	if verbose && cmd.HasParent() {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Use(logger)
		return nil
	}

	if verbose {
		logCfg.DebugMode = true
	}
	return logging.Initialize(logCfg, workspace)
}

func bootConfig() system.BootConfig {
	return system.BootConfig{
		Config:    appConfig,
		APIKey:    apiKey,
		Workspace: workspace,
	}
}

// diagnose adds a hint to fatal startup errors.
func diagnose(err error) string {
	msg := "Error: " + err.Error()
	var credErr *provider.CredentialError
	if errors.As(err, &credErr) {
		msg += "\n" + strings.Join([]string{
			"Provide a Gemini API key with one of:",
			"  --api-key <key>",
			"  LUMI_API_KEY / GEMINI_API_KEY / GOOGLE_API_KEY",
			"  API_KEY in .lumi/secrets.yaml",
		}, "\n")
	}
	return msg
}
