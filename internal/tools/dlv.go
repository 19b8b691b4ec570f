package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jackzampolin/reasonbench/internal/result"
)

var (
	dlvQueryAnsweringTime = regexp.MustCompile(`Query Answering Time`)
	// The atoms block sits between the banner's last line and the timing line.
	dlvAtomsBlock = regexp.MustCompile(`(?s)for further information\.\)\n(.*)\nQuery Answering`)
)

// DLVTool wraps the DLV^E (Datalog with existentials) engine.
type DLVTool struct {
	binaryPath string
}

var _ Tool = (*DLVTool)(nil)

// NewDLV creates a DLV tool.
func NewDLV(opts Options) (Tool, error) {
	if opts.BinaryPath == "" {
		return nil, fmt.Errorf("%s: binary path is required", DLV)
	}
	return &DLVTool{binaryPath: opts.BinaryPath}, nil
}

func (t *DLVTool) ID() ToolID         { return DLV }
func (t *DLVTool) Name() string       { return "DLV^E" }
func (t *DLVTool) BinaryPath() string { return t.binaryPath }

// CLIArgs builds: binary --program P --dataset D1 D2 ... [--working-dir ABS].
func (t *DLVTool) CLIArgs(program string, datasets []string, _ RunConfig, workingDir string) ([]string, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("%s: %w", DLV, ErrNoDatasets)
	}
	args := []string{t.binaryPath, "--program", program, "--dataset"}
	args = append(args, datasets...)
	if workingDir != "" {
		abs, err := filepath.Abs(workingDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working dir: %w", err)
		}
		args = append(args, "--working-dir", abs)
	}
	return args, nil
}

// CollectStatistics looks for the query answering time marker and counts the
// lines of the printed atoms block.
func (t *DLVTool) CollectStatistics(output string) *result.Result {
	res := &result.Result{Status: result.StatusError}
	if dlvQueryAnsweringTime.MatchString(output) {
		res.Status = result.StatusSuccess
	}
	if m := dlvAtomsBlock.FindStringSubmatch(output); m != nil {
		res.NbAtoms = result.Int(countLines(m[1]))
	}
	return res
}

func (t *DLVTool) StartSession(context.Context) error { return nil }
func (t *DLVTool) EndSession(context.Context) error   { return nil }

// countLines counts lines the way a line splitter does: no trailing empty line,
// zero for the empty string.
func countLines(s string) int {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Count(s, "\n") + 1
}
