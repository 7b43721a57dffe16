package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/lipidflow-cli/internal/config"
	"github.com/KaramelBytes/lipidflow-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	logger     = slog.New(slog.NewTextHandler(os.Stderr, nil))
	logCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "lipidflow",
	Short: "LipidFlow CLI: turn lipid classification tables into Sankey diagrams",
	Long: `LipidFlow aggregates a lipid classification table across three categorical stages
(for example Category → Main class → Sub class), folds small groups into "Others",
and writes the Sankey link graph, color map and an interactive plotly.js page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCleanup()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.lipidflow/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	if debug {
		level = slog.LevelDebug
	}
	l, cleanup, err := logging.Setup(os.Stderr, cfg.LogFile, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to open log file: %v\n", err)
		return
	}
	logCleanup()
	logger, logCleanup = l, cleanup
}

// loadedConfig returns the loaded configuration, loading it on demand.
func loadedConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
