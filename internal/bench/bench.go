// Package bench sweeps one tool over every partition of a benchmark.
//
// Layout:
//
//	<program-dir>/<partition>/<tool>.txt
//	<dataset-dir>/<tool>/<partition>/*.data
//	<output-dir>/<tool>/<partition>/{stdout,stderr}.txt
//	<output-dir>/<tool>/results.tsv
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/reasonbench/internal/dataset"
	"github.com/jackzampolin/reasonbench/internal/result"
	"github.com/jackzampolin/reasonbench/internal/tools"
)

// ResultsFile is the per-tool results table inside the output directory.
const ResultsFile = "results.tsv"

var ErrNoPartitions = errors.New("no partitions found")

// Config describes one sweep.
type Config struct {
	ProgramDir string
	DatasetDir string
	OutputDir  string
	Force      bool
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Partition is one program plus the datasets it runs on.
type Partition struct {
	Name     string
	Program  string
	Datasets []string
}

// Summary is what a sweep produced.
type Summary struct {
	RunID     string
	OutputDir string
	Results   result.Table
}

// Sweeper runs a tool over every partition, one invocation at a time.
type Sweeper struct {
	tool    tools.Tool
	cfg     Config
	timeout atomic.Int64
	logger  *slog.Logger
}

// New creates a sweeper for tool.
func New(tool tools.Tool, cfg Config) *Sweeper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{tool: tool, cfg: cfg, logger: logger}
	s.SetTimeout(cfg.Timeout)
	return s
}

// SetTimeout changes the per-run timeout. Runs already in flight keep theirs.
func (s *Sweeper) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = tools.DefaultTimeout
	}
	s.timeout.Store(int64(d))
}

// Timeout returns the timeout the next run will use.
func (s *Sweeper) Timeout() time.Duration {
	return time.Duration(s.timeout.Load())
}

// ToolDir is where the tool's artifacts and results table are written.
func (s *Sweeper) ToolDir() string {
	return filepath.Join(s.cfg.OutputDir, string(s.tool.ID()))
}

// Partitions lists the partitions to run, sorted by name.
func (s *Sweeper) Partitions() ([]Partition, error) {
	entries, err := os.ReadDir(s.cfg.ProgramDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read program dir: %w", err)
	}

	var partitions []Partition
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		program := filepath.Join(s.cfg.ProgramDir, e.Name(), string(s.tool.ID())+".txt")
		if _, err := os.Stat(program); err != nil {
			return nil, fmt.Errorf("partition %s: missing program: %w", e.Name(), err)
		}
		datasets, err := filepath.Glob(filepath.Join(s.cfg.DatasetDir, string(s.tool.ID()), e.Name(), "*.data"))
		if err != nil {
			return nil, err
		}
		sort.Strings(datasets)
		partitions = append(partitions, Partition{Name: e.Name(), Program: program, Datasets: datasets})
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPartitions, s.cfg.ProgramDir)
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i].Name < partitions[j].Name })
	return partitions, nil
}

// Run executes every partition in order and rewrites the results table after
// each one, so an interrupted sweep keeps what it finished.
func (s *Sweeper) Run(ctx context.Context) (*Summary, error) {
	partitions, err := s.Partitions()
	if err != nil {
		return nil, err
	}
	if err := dataset.PrepareOutputDir(s.cfg.OutputDir, s.cfg.Force); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.ToolDir(), 0o755); err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.New().String(), OutputDir: s.cfg.OutputDir}
	logger := s.logger.With("run_id", summary.RunID, "tool", s.tool.ID())
	logger.Info("benchmark started", "partitions", len(partitions), "output", s.cfg.OutputDir)

	defer func() {
		if err := s.tool.EndSession(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to end session", "error", err)
		}
	}()

	tablePath := filepath.Join(s.ToolDir(), ResultsFile)
	for _, p := range partitions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		req, err := s.request(p, logger)
		if err != nil {
			return summary, err
		}
		res, err := tools.Run(ctx, s.tool, req)
		if err != nil {
			return summary, fmt.Errorf("partition %s: %w", p.Name, err)
		}

		summary.Results = append(summary.Results, res)
		if err := result.Save(summary.Results, tablePath); err != nil {
			return summary, err
		}
	}

	logger.Info("benchmark finished", "results", tablePath)
	return summary, nil
}

func (s *Sweeper) request(p Partition, logger *slog.Logger) (tools.RunRequest, error) {
	req := tools.RunRequest{
		Program:     p.Program,
		Datasets:    p.Datasets,
		Timeout:     s.Timeout(),
		Name:        p.Name,
		WorkingDir:  filepath.Join(s.ToolDir(), p.Name),
		KeepSession: true,
		Logger:      logger.With("partition", p.Name),
	}
	if s.tool.ID() == tools.Vadalog {
		binds, err := BindsFor(p.Datasets)
		if err != nil {
			return req, fmt.Errorf("partition %s: %w", p.Name, err)
		}
		req.Config.Binds = binds
	}
	return req, nil
}

// BindsFor binds every dataset file to the relation named after its stem,
// read as CSV.
func BindsFor(datasets []string) ([]tools.Bind, error) {
	binds := make([]tools.Bind, 0, len(datasets))
	for _, path := range datasets {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		b, err := tools.ParseBind(stem + ":csv:" + path)
		if err != nil {
			return nil, err
		}
		binds = append(binds, b)
	}
	return binds, nil
}

// DefaultOutputDir names the output directory after the program directory
// and the start time.
func DefaultOutputDir(resultsDir, programDir string, now time.Time) string {
	return filepath.Join(resultsDir, filepath.Base(filepath.Clean(programDir))+"-"+now.Format("2006-01-02T15-04-05"))
}
