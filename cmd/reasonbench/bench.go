package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/bench"
	"github.com/jackzampolin/reasonbench/internal/config"
	"github.com/jackzampolin/reasonbench/internal/tools"
)

var (
	benchPrograms string
	benchDatasets string
	benchOutput   string
	benchForce    bool
	benchTimeout  time.Duration
	benchWatch    bool
	benchBinary   string
)

var benchCmd = &cobra.Command{
	Use:   "bench <tool>",
	Short: "Run a tool over every partition of a benchmark",
	Long: `Run a tool once per partition and collect the results table.

Layout:
  <programs>/<partition>/<tool>.txt
  <datasets>/<tool>/<partition>/*.data

Results go to <output>/<tool>/results.tsv, rewritten after every run, with
each run's stdout and stderr in <output>/<tool>/<partition>/.

With --watch the config file is watched and a changed run.timeout_seconds
applies to the next partition.

Examples:
  reasonbench bench dlv --programs programs/doctors-q1 --datasets datasets/doctors
  reasonbench bench vadalog --programs programs/psc --datasets datasets/psc --force`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(tools.Vadalog), string(tools.DLV)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get()

		tool, err := getTool(args[0], tools.Options{BinaryPath: benchBinary})
		if err != nil {
			return err
		}
		defer closeTool(tool)

		programs, err := filepath.Abs(benchPrograms)
		if err != nil {
			return err
		}
		datasets, err := filepath.Abs(benchDatasets)
		if err != nil {
			return err
		}
		output := benchOutput
		if output == "" {
			output = bench.DefaultOutputDir(cfg.Run.ResultsDir, programs, time.Now())
		}

		timeout := benchTimeout
		if timeout <= 0 {
			timeout = cfg.Run.Timeout()
		}

		sweeper := bench.New(tool, bench.Config{
			ProgramDir: programs,
			DatasetDir: datasets,
			OutputDir:  output,
			Force:      benchForce,
			Timeout:    timeout,
			Logger:     logger,
		})

		if benchWatch {
			cfgMgr.OnChange(func(c *config.Config) {
				logger.Info("config changed", "timeout", c.Run.Timeout())
				sweeper.SetTimeout(c.Run.Timeout())
			})
			cfgMgr.WatchConfig()
		}

		summary, err := sweeper.Run(ctx)
		if summary != nil && len(summary.Results) > 0 {
			if outErr := api.Output(summary.Results); outErr != nil && err == nil {
				err = outErr
			}
		}
		return err
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchPrograms, "programs", "", "program directory, one subdirectory per partition")
	benchCmd.Flags().StringVar(&benchDatasets, "datasets", "", "dataset directory, <tool>/<partition>/*.data")
	benchCmd.Flags().StringVar(&benchOutput, "output-dir", "", "output directory (default: <results_dir>/<programs>-<timestamp>)")
	benchCmd.Flags().BoolVar(&benchForce, "force", false, "remove an existing output directory")
	benchCmd.Flags().DurationVar(&benchTimeout, "timeout", 0, "per-run timeout (default: run.timeout_seconds)")
	benchCmd.Flags().BoolVar(&benchWatch, "watch", false, "reload run.timeout_seconds from the config file while running")
	benchCmd.Flags().StringVar(&benchBinary, "binary", "", "tool binary (overrides the configured one)")
	_ = benchCmd.MarkFlagRequired("programs")
	_ = benchCmd.MarkFlagRequired("datasets")

	rootCmd.AddCommand(benchCmd)
}
