// Package procrun runs external commands in their own process group with a
// wall-clock timeout and a terminate-then-kill shutdown sequence.
package procrun

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// ShutdownGrace is how long a terminated child gets to exit before it is killed.
const ShutdownGrace = 10 * time.Second

// ErrStillRunning is returned by Shutdown when the child survived every signal
// within the allotted waits.
var ErrStillRunning = errors.New("process still running after kill")

// Process is a started child process whose exit is observed by a background
// reaper. The reaper owns the OS handle and releases it on every path.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Start launches cmd in a new process group.
func Start(cmd *exec.Cmd) (*Process, error) {
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the child has been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Running reports whether the child has not exited yet.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the child exits or d elapses. It reports whether the child exited.
func (p *Process) Wait(d time.Duration) bool {
	if d <= 0 {
		return !p.Running()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.done:
		return true
	case <-t.C:
		return false
	}
}

// Err returns the result of exec.Cmd.Wait. Only meaningful after Done is closed.
func (p *Process) Err() error {
	return p.err
}

// ExitCode returns the child's exit status. A child terminated by a signal
// reports the negated signal number. Only meaningful after Done is closed.
func (p *Process) ExitCode() int {
	state := p.cmd.ProcessState
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

// Shutdown stops the child: terminate, wait up to grace, then kill and wait up
// to killWait. It returns nil as soon as the child has been reaped.
func (p *Process) Shutdown(grace, killWait time.Duration) error {
	if !p.Running() {
		return nil
	}

	if err := terminate(p.cmd); err != nil && p.Running() {
		return fmt.Errorf("failed to terminate process %d: %w", p.Pid(), err)
	}
	if p.Wait(grace) {
		return nil
	}

	if err := kill(p.cmd); err != nil && p.Running() {
		return fmt.Errorf("failed to kill process %d: %w", p.Pid(), err)
	}
	if p.Wait(killWait) {
		return nil
	}
	return fmt.Errorf("pid %d: %w", p.Pid(), ErrStillRunning)
}
