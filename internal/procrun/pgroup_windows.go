//go:build windows

package procrun

import (
	"os/exec"
)

// Windows has no process groups reachable through syscall; the child alone is signaled.
func setProcessGroup(cmd *exec.Cmd) {}

func terminate(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
