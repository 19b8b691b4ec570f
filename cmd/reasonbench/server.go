package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/config"
	"github.com/jackzampolin/reasonbench/internal/procrun"
	"github.com/jackzampolin/reasonbench/internal/tools"
)

const engineServerName = "vadalog"

var (
	logsTail     string
	removeServer bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the Vadalog engine server",
	Long: `Manage the Vadalog engine server outside of tool runs.

A server started here is reused by 'reasonbench run vadalog' and
'reasonbench bench vadalog' instead of being started per run.

In process mode 'server start' stays in the foreground and supervises the
java process; stop it with Ctrl+C or 'reasonbench server stop'. In docker
mode the container keeps running after 'server start' returns.

Examples:
  reasonbench server start    # Start the engine server
  reasonbench server status   # Check whether it answers
  reasonbench server stop     # Stop it`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the engine server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get().Vadalog.Server

		switch cfg.Mode {
		case config.ServerModeDocker:
			s, err := tools.NewDockerServer(tools.DockerConfigFrom(cfg, logger))
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Println("Starting engine container...")
			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("failed to start engine container: %w", err)
			}
			fmt.Printf("Engine is running at %s\n", s.URL())
			return nil
		case config.ServerModeNone:
			return fmt.Errorf("server mode is %q: the engine is managed elsewhere", cfg.Mode)
		default:
			return superviseProcessServer(ctx, cfg)
		}
	},
}

// superviseProcessServer runs the engine as a child process until ctx is
// cancelled or the engine exits.
func superviseProcessServer(ctx context.Context, cfg config.ServerConfig) error {
	h, err := getHome()
	if err != nil {
		return err
	}
	pidPath := h.ServerPidPath(engineServerName)
	if pid, err := procrun.ReadPidFile(pidPath); err == nil && procrun.IsProcessAlive(pid) {
		return fmt.Errorf("engine server already supervised by pid %d", pid)
	}

	logFile, err := os.OpenFile(h.ServerLogPath(engineServerName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open server log: %w", err)
	}
	defer logFile.Close()

	pcfg := tools.ProcessConfigFrom(cfg, logger)
	pcfg.Output = logFile
	s := tools.NewProcessServer(pcfg)

	if err := s.Start(ctx); err != nil {
		return err
	}
	if s.Pid() == 0 {
		fmt.Printf("An engine server is already answering at %s\n", s.URL())
		return nil
	}

	if err := procrun.WritePidFile(pidPath, os.Getpid()); err != nil {
		_ = s.Stop(context.Background())
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	defer procrun.RemovePidFile(pidPath)

	fmt.Printf("Engine is running at %s (pid %d, log %s)\n", s.URL(), s.Pid(), logFile.Name())

	var exitErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down engine server")
	case <-s.Done():
		exitErr = errors.New("engine server exited unexpectedly")
	}
	if err := s.Stop(context.Background()); err != nil {
		return err
	}
	return exitErr
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the engine server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get().Vadalog.Server

		if cfg.Mode == config.ServerModeDocker {
			s, err := tools.NewDockerServer(tools.DockerConfigFrom(cfg, logger))
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Stop(ctx); err != nil {
				return err
			}
			if removeServer {
				if err := s.Remove(ctx); err != nil {
					return err
				}
			}
			fmt.Println("Engine container stopped")
			return nil
		}

		h, err := getHome()
		if err != nil {
			return err
		}
		pidPath := h.ServerPidPath(engineServerName)
		pid, err := procrun.ReadPidFile(pidPath)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("Engine server is not running")
			return nil
		}
		if err != nil {
			return err
		}
		if !procrun.IsProcessAlive(pid) {
			procrun.RemovePidFile(pidPath)
			fmt.Println("Engine server is not running (removed stale pid file)")
			return nil
		}

		// The supervisor stops the engine itself; give it the engine's grace
		// period plus time to clean up.
		if err := procrun.StopPid(pid, cfg.StopGrace()+5*time.Second); err != nil {
			return err
		}
		procrun.RemovePidFile(pidPath)
		fmt.Println("Engine server stopped")
		return nil
	},
}

// ServerStatus is the output of 'server status'.
type ServerStatus struct {
	Mode    string `json:"mode" yaml:"mode"`
	URL     string `json:"url" yaml:"url"`
	State   string `json:"state" yaml:"state"`
	Pid     int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get().Vadalog.Server
		status := ServerStatus{Mode: cfg.Mode, URL: cfg.URL, State: "unknown"}

		switch cfg.Mode {
		case config.ServerModeDocker:
			s, err := tools.NewDockerServer(tools.DockerConfigFrom(cfg, logger))
			if err != nil {
				return err
			}
			defer s.Close()
			state, err := s.Status(ctx)
			if err != nil {
				return err
			}
			status.State = string(state)
			status.URL = s.URL()
		case config.ServerModeNone:
		default:
			h, err := getHome()
			if err != nil {
				return err
			}
			status.State = "stopped"
			if pid, err := procrun.ReadPidFile(h.ServerPidPath(engineServerName)); err == nil && procrun.IsProcessAlive(pid) {
				status.State = "running"
				status.Pid = pid
			}
		}

		if err := api.NewClient(status.URL, 0).Ping(ctx); err != nil {
			status.Error = err.Error()
		} else {
			status.Healthy = true
		}
		return api.Output(status)
	},
}

var serverLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show engine server logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get().Vadalog.Server

		if cfg.Mode == config.ServerModeDocker {
			s, err := tools.NewDockerServer(tools.DockerConfigFrom(cfg, logger))
			if err != nil {
				return err
			}
			defer s.Close()
			logs, err := s.Logs(ctx, logsTail)
			if err != nil {
				return err
			}
			fmt.Print(logs)
			return nil
		}

		h, err := getHome()
		if err != nil {
			return err
		}
		b, err := os.ReadFile(h.ServerLogPath(engineServerName))
		if err != nil {
			return fmt.Errorf("failed to read server log: %w", err)
		}
		_, err = os.Stdout.Write(b)
		return err
	},
}

func init() {
	serverLogsCmd.Flags().StringVar(&logsTail, "tail", "100", "number of lines to show from the end (docker)")
	serverStopCmd.Flags().BoolVar(&removeServer, "remove", false, "remove the container after stopping it (docker)")

	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
	serverCmd.AddCommand(serverStatusCmd)
	serverCmd.AddCommand(serverLogsCmd)

	rootCmd.AddCommand(serverCmd)
}
