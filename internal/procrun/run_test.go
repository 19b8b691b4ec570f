//go:build !windows

package procrun

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CapturesOutput(t *testing.T) {
	out, err := Run(context.Background(), []string{"/bin/sh", "-c", "echo hello; echo oops >&2"}, "", 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "hello\n", string(out.Stdout))
	assert.Equal(t, "oops\n", string(out.Stderr))
	assert.False(t, out.TimedOut)
	assert.Less(t, out.Seconds(), 5.0)
}

func TestRun_ExitCode(t *testing.T) {
	out, err := Run(context.Background(), []string{"/bin/sh", "-c", "exit 3"}, "", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.False(t, out.TimedOut)
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := Run(context.Background(), []string{"/bin/sh", "-c", "pwd -P"}, dir, 5*time.Second)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", string(out.Stdout))
}

func TestRun_Timeout(t *testing.T) {
	timeout := 300 * time.Millisecond
	out, err := Run(context.Background(), []string{"/bin/sh", "-c", "echo started; sleep 30"}, "", timeout)
	require.NoError(t, err)

	assert.True(t, out.TimedOut)
	assert.GreaterOrEqual(t, out.Elapsed, timeout)
	assert.Less(t, out.Elapsed, 2*timeout)
	assert.Equal(t, -15, out.ExitCode)
}

func TestRun_MissingBinary(t *testing.T) {
	_, err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, "", time.Second)
	assert.Error(t, err)
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := Run(context.Background(), nil, "", time.Second)
	assert.Error(t, err)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := Run(ctx, []string{"/bin/sh", "-c", "sleep 30"}, "", 30*time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, out.TimedOut)
	assert.Less(t, out.Elapsed, 5*time.Second)
}

func TestProcess_ShutdownEscalatesToKill(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "trap '' TERM; while true; do sleep 0.05; done")
	p, err := Start(cmd)
	require.NoError(t, err)

	// let the shell install its trap
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Shutdown(200*time.Millisecond, 5*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, p.Running())
	assert.Equal(t, -9, p.ExitCode())
}

func TestProcess_ShutdownAfterExit(t *testing.T) {
	p, err := Start(exec.Command("/bin/sh", "-c", "exit 0"))
	require.NoError(t, err)
	require.True(t, p.Wait(5*time.Second))

	assert.NoError(t, p.Shutdown(time.Second, time.Second))
	assert.Equal(t, 0, p.ExitCode())
}
