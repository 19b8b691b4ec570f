package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/config"
	"github.com/jackzampolin/reasonbench/internal/home"
	"github.com/jackzampolin/reasonbench/internal/tools"
	"github.com/jackzampolin/reasonbench/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	envFile      string
	verbose      bool

	cfgMgr *config.Manager
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reasonbench",
	Short: "Benchmark harness for Datalog reasoning engines",
	Long: `reasonbench runs Datalog reasoning engines (Vadalog, DLV^E) on the same
programs and datasets and records one normalized result per invocation.

It covers:
  - Single tool invocations with a hard timeout
  - Sweeps over every partition of a benchmark
  - Side-by-side comparison of the results tables
  - Dataset and program generation for each engine
  - Lifecycle of the Vadalog engine server`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		api.SetOutputFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		// .env values only fill variables that are not already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr = mgr
		if f := mgr.ConfigFile(); f != "" {
			logger.Debug("config loaded", "file", f)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.reasonbench/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "reasonbench home directory (default: ~/.reasonbench)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or tsv",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", ".env", "dotenv file loaded before the configuration",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory, creating it if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// getTool builds the named tool from the loaded configuration. Callers
// release it with closeTool.
func getTool(name string, over tools.Options) (tools.Tool, error) {
	return tools.DefaultRegistry(cfgMgr.Get(), logger).MakeByName(name, over)
}

func closeTool(tool tools.Tool) {
	if err := tools.Close(tool); err != nil {
		logger.Warn("failed to release tool", "tool", tool.ID(), "error", err)
	}
}
