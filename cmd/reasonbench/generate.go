package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/reasonbench/internal/dataset"
	"github.com/jackzampolin/reasonbench/internal/program"
)

var (
	genOutput     string
	genForce      bool
	genSizes      []int
	genPartitions []string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate benchmark datasets and programs",
	Long: `Generate per-tool datasets and programs from the original sources.

Examples:
  reasonbench generate dataset doctors third_party/original_datasets/doctors --output-dir datasets
  reasonbench generate dataset psc third_party/original_datasets/dbpedia --output-dir datasets
  reasonbench generate program doctors third_party/original_programs/doctors --output-dir programs`,
}

var generateDatasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Generate datasets",
}

var generateDatasetDoctorsCmd = &cobra.Command{
	Use:   "doctors <input-dir>",
	Short: "Generate the doctors datasets, one partition per size subdirectory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := &dataset.Generator{OutputDir: genOutput, Force: genForce, Logger: logger}
		return g.Doctors(cmd.Context(), args[0])
	},
}

var generateDatasetPSCCmd = &cobra.Command{
	Use:   "psc <source-dir>",
	Short: "Generate the person/significant-control datasets from DBpedia extracts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := &dataset.Generator{OutputDir: genOutput, Force: genForce, Logger: logger}
		return g.PSC(cmd.Context(), dataset.DefaultPSCSources(args[0]), genSizes)
	},
}

var generateProgramCmd = &cobra.Command{
	Use:   "program",
	Short: "Generate programs",
}

var generateProgramDoctorsCmd = &cobra.Command{
	Use:   "doctors <input-dir>",
	Short: "Translate the doctors programs for every tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return program.Doctors(cmd.Context(), args[0], genOutput, genPartitions, logger)
	},
}

func init() {
	generateCmd.PersistentFlags().StringVar(&genOutput, "output-dir", ".", "output directory")
	generateDatasetCmd.PersistentFlags().BoolVar(&genForce, "force", false, "remove an existing dataset directory")
	generateDatasetPSCCmd.Flags().IntSliceVar(&genSizes, "sizes", dataset.DefaultPSCSizes, "person partition sizes")
	generateProgramDoctorsCmd.Flags().StringSliceVar(&genPartitions, "partitions", program.DefaultDoctorsPartitions, "size labels to translate")

	generateDatasetCmd.AddCommand(generateDatasetDoctorsCmd)
	generateDatasetCmd.AddCommand(generateDatasetPSCCmd)
	generateProgramCmd.AddCommand(generateProgramDoctorsCmd)
	generateCmd.AddCommand(generateDatasetCmd)
	generateCmd.AddCommand(generateProgramCmd)

	rootCmd.AddCommand(generateCmd)
}
