package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackzampolin/reasonbench/internal/procrun"
	"github.com/jackzampolin/reasonbench/internal/result"
)

// DefaultTimeout is used when a RunRequest has no timeout.
const DefaultTimeout = 5 * time.Second

// RunRequest describes one tool invocation.
type RunRequest struct {
	Program  string
	Datasets []string
	Config   RunConfig
	Timeout  time.Duration
	Cwd      string // working directory of the child process
	Name     string
	// WorkingDir receives stdout.txt and stderr.txt and is passed to the tool.
	WorkingDir string
	// KeepSession leaves the engine server running after the invocation; the
	// caller then owns the EndSession call.
	KeepSession bool
	Logger      *slog.Logger
}

// Run invokes tool once and returns the finished Result.
//
// Precondition violations, engine-server failures and a binary that cannot be
// started are returned as errors. Everything else, including timeouts and
// unparseable output, is reported through the Result's status.
func Run(ctx context.Context, tool Tool, req RunRequest) (*result.Result, error) {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("tool", tool.ID())
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	args, err := tool.CLIArgs(req.Program, req.Datasets, req.Config, req.WorkingDir)
	if err != nil {
		return nil, err
	}

	if err := tool.StartSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to start %s session: %w", tool.Name(), err)
	}

	logger.Info("running command", "command", strings.Join(args, " "), "timeout", timeout)
	out, runErr := procrun.Run(ctx, args, req.Cwd, timeout)

	if !req.KeepSession {
		if err := tool.EndSession(ctx); err != nil {
			logger.Warn("failed to end session", "error", err)
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	stdout := decode(out.Stdout)
	stderr := decode(out.Stderr)

	if req.WorkingDir != "" {
		if err := writeArtifacts(req.WorkingDir, stdout, stderr); err != nil {
			return nil, err
		}
	}

	res := tool.CollectStatistics(stdout)
	res.Name = req.Name
	res.Command = args

	// in case the tool did not report its own end-to-end time
	if res.TimeEnd2End == nil {
		res.TimeEnd2End = result.Float(out.Seconds())
	}

	switch {
	case out.TimedOut:
		res.Status = result.StatusTimeout
	case res.Status == "" || out.ExitCode != 0:
		res.Status = result.StatusError
	}

	attrs := []any{"status", res.Status, "time_end2end", *res.TimeEnd2End, "exit_code", out.ExitCode}
	if res.NbAtoms != nil {
		attrs = append(attrs, "nb_atoms", *res.NbAtoms)
	}
	logger.Info("command finished", attrs...)
	return res, nil
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func writeArtifacts(dir, stdout, stderr string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create working dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stdout.txt"), []byte(stdout), 0o644); err != nil {
		return fmt.Errorf("failed to write stdout: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stderr.txt"), []byte(stderr), 0o644); err != nil {
		return fmt.Errorf("failed to write stderr: %w", err)
	}
	return nil
}
