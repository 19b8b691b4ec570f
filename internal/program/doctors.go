package program

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jackzampolin/reasonbench/internal/dataset"
	"github.com/jackzampolin/reasonbench/internal/tools"
)

// DefaultDoctorsPartitions are the size labels the doctors programs exist for.
var DefaultDoctorsPartitions = []string{"1m", "10k", "100k", "500k"}

var queryPattern = regexp.MustCompile(`q[0-9]+`)

// Doctors translates every program_<size>q<N>.vada in inputDir into
// <outputDir>/<input-name>-q<N>/<normalized-size>/<tool>.txt for each tool.
// Program directories from a previous generation are removed first.
func Doctors(ctx context.Context, inputDir, outputDir string, partitions []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if len(partitions) == 0 {
		partitions = DefaultDoctorsPartitions
	}
	name := filepath.Base(inputDir)

	old, err := filepath.Glob(filepath.Join(outputDir, name+"-q*"))
	if err != nil {
		return err
	}
	for _, dir := range old {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	sizes := make([]int, len(partitions))
	for i, p := range partitions {
		if sizes[i], err = dataset.ParseSize(p); err != nil {
			return err
		}
	}
	digits := dataset.Digits(sizes)

	written := 0
	for i, label := range partitions {
		programs, err := filepath.Glob(filepath.Join(inputDir, "program_"+label+"q*.vada"))
		if err != nil {
			return err
		}
		for _, path := range programs {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			query := queryPattern.FindString(filepath.Base(path))
			dir := filepath.Join(outputDir, name+"-"+query, dataset.NormalizedInteger(sizes[i], digits))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for _, id := range tools.AllToolIDs() {
				out, err := Translate(id, string(src))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := os.WriteFile(filepath.Join(dir, string(id)+".txt"), []byte(out), 0o644); err != nil {
					return err
				}
			}
			written++
			logger.Debug("program translated", "program", path, "dir", dir)
		}
	}
	logger.Info("programs generated", "input", inputDir, "output", outputDir, "programs", written)
	return nil
}
