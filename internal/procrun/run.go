package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Output is what Run captured from one child process.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Elapsed  time.Duration
	TimedOut bool
}

// Run executes command in dir and waits up to timeout for it to finish.
//
// On timeout the child's process group is terminated, given ShutdownGrace to
// exit, then killed; the final wait after the kill is bounded by timeout again.
// Elapsed on that path is the time at which the timeout fired, not the end of
// the shutdown sequence.
//
// If ctx is cancelled the same shutdown sequence runs and ctx.Err() is returned
// alongside whatever was captured.
func Run(ctx context.Context, command []string, dir string, timeout time.Duration) (Output, error) {
	if len(command) == 0 {
		return Output{}, errors.New("empty command")
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren that inherited the pipes must not keep Wait blocked.
	cmd.WaitDelay = ShutdownGrace

	start := time.Now()
	p, err := Start(cmd)
	if err != nil {
		return Output{}, fmt.Errorf("failed to start %s: %w", command[0], err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var (
		out      Output
		runErr   error
		finished bool
	)
	select {
	case <-p.Done():
		out.Elapsed = time.Since(start)
		finished = true
	case <-timer.C:
		out.Elapsed = time.Since(start)
		out.TimedOut = true
		runErr = p.Shutdown(ShutdownGrace, timeout)
	case <-ctx.Done():
		out.Elapsed = time.Since(start)
		if err := p.Shutdown(ShutdownGrace, timeout); err != nil {
			runErr = errors.Join(ctx.Err(), err)
		} else {
			runErr = ctx.Err()
		}
	}

	if finished || !p.Running() {
		out.ExitCode = p.ExitCode()
		out.Stdout = stdout.Bytes()
		out.Stderr = stderr.Bytes()
	} else {
		out.ExitCode = -1
	}

	if errors.Is(runErr, ErrStillRunning) && out.TimedOut {
		// Reported through TimedOut; the reaper keeps the handle until the child dies.
		runErr = nil
	}
	return out, runErr
}

// Seconds returns Elapsed in seconds.
func (o Output) Seconds() float64 {
	return o.Elapsed.Seconds()
}
