//go:build !windows

package procrun

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPidFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	require.NoError(t, WritePidFile(path, 4242))

	pid, err := ReadPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	RemovePidFile(path)
	_, err = ReadPidFile(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadPidFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := ReadPidFile(path)
	assert.Error(t, err)
}

func TestIsProcessAlive(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
}

func TestStopPid(t *testing.T) {
	p, err := Start(exec.Command("/bin/sh", "-c", "sleep 30"))
	require.NoError(t, err)

	require.NoError(t, StopPid(p.Pid(), 2*time.Second))
	assert.True(t, p.Wait(2*time.Second))
}
