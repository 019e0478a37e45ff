package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ferlint/internal/analyzer"
	"ferlint/internal/config"
	"ferlint/internal/logging"
	"ferlint/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string

	// analyze flags
	jsonOutput   bool
	artifactPath string
	noStyle      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ferlint",
	Short: "ferlint - automated reviewer for two-fer Python submissions",
	Long: `ferlint reviews a "two fer" exercise submission and decides whether it can be
approved as optimal, should be disapproved with comments, or needs a mentor.

Every run writes analysis.json with the status, the review comments and the raw
pylint output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := logging.Initialize(logging.Config{
			Level:  loaded.Logging.Level,
			Format: loaded.Logging.Format,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = loaded
		logger = logging.Logger()
		logging.BootDebug("config loaded from %s", configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// analyzeCmd runs a single analysis
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a submission file or directory",
	Long: `Analyzes the submission at path. A directory is resolved to its exercise
file (two_fer.py by default). The summary goes to stdout; analysis.json is
written to the configured artifact path.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// watchCmd re-analyzes on every change
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze a submission whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ferlint version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ferlint %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")

	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the analysis artifact as JSON")
	analyzeCmd.Flags().StringVar(&artifactPath, "artifact", "", "Where to write analysis.json (overrides config)")
	analyzeCmd.Flags().BoolVar(&noStyle, "no-style", false, "Skip the pylint pass")

	watchCmd.Flags().StringVar(&artifactPath, "artifact", "", "Where to write analysis.json (overrides config)")
	watchCmd.Flags().BoolVar(&noStyle, "no-style", false, "Skip the pylint pass")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// effectiveConfig applies the command-line overrides to the loaded config.
func effectiveConfig() *config.Config {
	c := cfg
	if c == nil {
		c = config.DefaultConfig()
	}
	out := *c
	if artifactPath != "" {
		out.Output.ArtifactPath = artifactPath
	}
	if noStyle {
		out.Style.Enabled = false
	}
	return &out
}

// signalContext is cancelled on SIGINT/SIGTERM or when the command's own context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := effectiveConfig()
	a := analyzer.NewFromConfig(c)
	result := a.Analyze(ctx, args[0])

	if jsonOutput {
		data, err := json.MarshalIndent(result.Artifact(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), renderSummary(args[0], result, a.ArtifactPath()))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := effectiveConfig()
	a := analyzer.NewFromConfig(c)
	path := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprint(out, renderSummary(path, a.Analyze(ctx, path), a.ArtifactPath()))

	sw, err := watch.New(path, a, c.GetWatchDebounce(), func(r analyzer.Result) {
		fmt.Fprint(out, renderSummary(path, r, a.ArtifactPath()))
	})
	if err != nil {
		return err
	}
	if err := sw.Start(ctx); err != nil {
		return err
	}
	defer sw.Stop()

	fmt.Fprintln(out, hintStyle.Render(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path)))

	select {
	case <-ctx.Done():
	case <-sw.Done():
	}

	stats := sw.Stats()
	if logger != nil {
		logger.Info("Watcher stopped",
			zap.Int("events", stats.Events),
			zap.Int("analyses", stats.Analyses),
			zap.Int("errors", stats.Errors))
	}
	return nil
}
