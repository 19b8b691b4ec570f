package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/report"
)

var (
	reportOrder []string
	reportOut   string
)

var reportCmd = &cobra.Command{
	Use:   "report <benchmark-dir>",
	Short: "Compare the results tables of a benchmark run",
	Long: `Join every tool's results table by run name.

Each subdirectory of the benchmark directory must hold exactly one .tsv file.

Examples:
  reasonbench report results/doctors-q1-2024-03-01T12-30-00 -o tsv
  reasonbench report results/psc --order vadalog,dlv --out comparison.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := report.FindToolTables(args[0], reportOrder)
		if err != nil {
			return err
		}
		comparison, err := report.Compare(tables)
		if err != nil {
			return err
		}

		if reportOut != "" {
			if err := os.WriteFile(reportOut, []byte(comparison.TSV()), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			logger.Info("report written", "file", reportOut, "tools", strings.Join(comparison.Tools, ","))
			return nil
		}
		return api.Output(comparison)
	},
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportOrder, "order", []string{"vadalog", "dlv"}, "tool column order")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "write the comparison as TSV to this file")

	rootCmd.AddCommand(reportCmd)
}
