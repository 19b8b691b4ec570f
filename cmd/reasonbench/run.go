package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/result"
	"github.com/jackzampolin/reasonbench/internal/tools"
)

var (
	runProgram    string
	runDatasets   []string
	runBinds      tools.BindList
	runWorkingDir string
	runName       string
	runBinary     string
	runTimeout    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <tool>",
	Short: "Run one tool once and print its result",
	Long: `Run a reasoning engine on a program and print the normalized result.

The engine is killed when the timeout expires; the result then has status
"timeout". Standard output and error are saved in the working directory when
one is given.

Examples:
  reasonbench run dlv --program p.dlv --dataset a.data,b.data
  reasonbench run vadalog --program p.vada --bind own:csv:data/own.csv
  reasonbench run dlv -p p.dlv -d a.data --timeout 60s -o tsv`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(tools.Vadalog), string(tools.DLV)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tool, err := getTool(args[0], tools.Options{BinaryPath: runBinary})
		if err != nil {
			return err
		}
		defer closeTool(tool)

		program, err := filepath.Abs(runProgram)
		if err != nil {
			return err
		}
		datasets := make([]string, len(runDatasets))
		for i, d := range runDatasets {
			if datasets[i], err = filepath.Abs(d); err != nil {
				return err
			}
		}

		timeout := runTimeout
		if timeout <= 0 {
			timeout = cfgMgr.Get().Run.Timeout()
		}

		res, err := tools.Run(ctx, tool, tools.RunRequest{
			Program:    program,
			Datasets:   datasets,
			Config:     tools.RunConfig{Binds: runBinds},
			Timeout:    timeout,
			Name:       runName,
			WorkingDir: runWorkingDir,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", tool.Name(), err)
		}
		return api.Output(result.Table{res})
	},
}

func init() {
	runCmd.Flags().StringVarP(&runProgram, "program", "p", "", "program file")
	runCmd.Flags().StringSliceVarP(&runDatasets, "dataset", "d", nil, "dataset files (dlv)")
	runCmd.Flags().Var(&runBinds, "bind", "predicate_name:data_format:dataset_path (vadalog, repeatable)")
	runCmd.Flags().StringVarP(&runWorkingDir, "working-dir", "w", "", "directory for stdout.txt and stderr.txt")
	runCmd.Flags().StringVar(&runName, "name", "", "name recorded in the result")
	runCmd.Flags().StringVar(&runBinary, "binary", "", "tool binary (overrides the configured one)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "hard timeout (default: run.timeout_seconds)")
	_ = runCmd.MarkFlagRequired("program")

	rootCmd.AddCommand(runCmd)
}
