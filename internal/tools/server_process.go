package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/procrun"
)

// ProcessServerConfig holds configuration for a host-process engine server.
type ProcessServerConfig struct {
	JavaHome string
	Root     string // working directory of the server
	Jar      string // relative to Root
	URL      string
	// Command replaces "java -jar Jar" when set.
	Command []string
	// Output receives the server's stdout and stderr; nil discards them.
	Output    io.Writer
	Health    HealthConfig
	StopGrace time.Duration
	Logger    *slog.Logger
}

// ProcessServer runs the engine server as a child process of this program.
type ProcessServer struct {
	cfg    ProcessServerConfig
	client *api.Client
	logger *slog.Logger

	proc *procrun.Process // nil when not running
	// external is set when Start found a server it did not spawn.
	external bool
}

// NewProcessServer creates a stopped process server.
func NewProcessServer(cfg ProcessServerConfig) *ProcessServer {
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = DefaultStopGrace
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessServer{
		cfg:    cfg,
		client: api.NewClient(cfg.URL, 0),
		logger: logger.With("component", "engine-server"),
	}
}

// JavaBin returns the java executable under JavaHome.
func (s *ProcessServer) JavaBin() string {
	return filepath.Join(s.cfg.JavaHome, "bin", "java")
}

// Command returns the argument list used to launch the server.
func (s *ProcessServer) Command() []string {
	if len(s.cfg.Command) > 0 {
		return s.cfg.Command
	}
	return []string{s.JavaBin(), "-jar", s.cfg.Jar}
}

// URL returns the engine endpoint.
func (s *ProcessServer) URL() string {
	return s.cfg.URL
}

// Running reports whether a session is open on this server.
func (s *ProcessServer) Running() bool {
	return s.proc != nil || s.external
}

// Pid returns the server's process id, or 0 when not running.
func (s *ProcessServer) Pid() int {
	if s.proc == nil {
		return 0
	}
	return s.proc.Pid()
}

// Done is closed when the server process exits. Nil when not running.
func (s *ProcessServer) Done() <-chan struct{} {
	if s.proc == nil {
		return nil
	}
	return s.proc.Done()
}

// Start spawns the server and waits until it is healthy. A server already
// answering on the URL is reused and left alone by Stop.
func (s *ProcessServer) Start(ctx context.Context) error {
	if s.Running() {
		return nil
	}
	if s.client.Ping(ctx) == nil {
		s.logger.Info("engine server already running", "url", s.cfg.URL)
		s.external = true
		return nil
	}

	command := s.Command()
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = s.cfg.Root
	if s.cfg.Output != nil {
		cmd.Stdout = s.cfg.Output
		cmd.Stderr = s.cfg.Output
	}

	s.logger.Info("starting engine server", "command", command, "dir", s.cfg.Root)
	proc, err := procrun.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start engine server: %w", err)
	}
	s.proc = proc

	s.logger.Info("waiting until engine server is healthy", "url", s.cfg.URL)
	if err := waitHealthy(ctx, s.client, s.cfg.Health, proc.Running, s.logger); err != nil {
		if stopErr := s.stop(); stopErr != nil {
			s.logger.Warn("failed to stop unhealthy engine server", "error", stopErr)
		}
		return err
	}
	s.logger.Info("engine server is ready", "pid", proc.Pid())
	return nil
}

// Stop terminates the server, killing it after the stop grace period.
func (s *ProcessServer) Stop(ctx context.Context) error {
	s.external = false
	if s.proc == nil {
		return nil
	}
	return s.stop()
}

func (s *ProcessServer) stop() error {
	proc := s.proc
	s.proc = nil
	// After the kill there is nothing left to wait for but the reaper.
	return proc.Shutdown(s.cfg.StopGrace, s.cfg.StopGrace)
}
