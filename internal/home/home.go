package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the reasonbench home directory.
	DefaultDirName = ".reasonbench"

	// RunDirName is the subdirectory for pid files and server logs.
	RunDirName = "run"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the reasonbench home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.reasonbench).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// RunPath returns the path to the run directory.
func (d *Dir) RunPath() string {
	return filepath.Join(d.path, RunDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ServerPidPath returns the pid file of a foreground engine server.
func (d *Dir) ServerPidPath(tool string) string {
	return filepath.Join(d.RunPath(), tool+"-server.pid")
}

// ServerLogPath returns the log file of a foreground engine server.
func (d *Dir) ServerLogPath(tool string) string {
	return filepath.Join(d.RunPath(), tool+"-server.log")
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create run directory (this also creates the parent)
	if err := os.MkdirAll(d.RunPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
