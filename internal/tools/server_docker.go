package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"

	"github.com/jackzampolin/reasonbench/internal/api"
)

const (
	DefaultEngineImage         = "vadalog-engine:1.10.6"
	DefaultEngineContainerName = "reasonbench-vadalog"
	DefaultEngineHostPort      = "8080"
	DefaultEngineContainerPort = "8080/tcp"
	EngineLabel                = "reasonbench-vadalog"
)

// ContainerStatus represents the state of the engine container.
type ContainerStatus string

const (
	ContainerRunning  ContainerStatus = "running"
	ContainerStopped  ContainerStatus = "stopped"
	ContainerNotFound ContainerStatus = "not_found"
	ContainerStarting ContainerStatus = "starting"
	ContainerCreated  ContainerStatus = "created"
)

// DockerServerConfig holds configuration for a containerized engine server.
type DockerServerConfig struct {
	Image         string
	ContainerName string
	HostPort      string
	ContainerPort string
	Memory        string            // e.g. "4g"; empty means no limit
	Cmd           []string          // overrides the image command
	Labels        map[string]string // added to EngineLabel
	Health        HealthConfig
	StopGrace     time.Duration
	Logger        *slog.Logger
}

// DockerServer runs the engine server in a Docker container.
type DockerServer struct {
	cli           *client.Client
	containerName string
	imageName     string
	hostPort      string
	containerPort nat.Port
	memory        int64
	cmd           []string
	labels        map[string]string
	health        HealthConfig
	stopGrace     time.Duration
	client        *api.Client
	logger        *slog.Logger

	running bool
	// external is set when Start found the container already running.
	external bool
}

// NewDockerServer creates a Docker-backed engine server.
func NewDockerServer(cfg DockerServerConfig) (*DockerServer, error) {
	if cfg.ContainerName == "" {
		cfg.ContainerName = DefaultEngineContainerName
	}
	if cfg.Image == "" {
		cfg.Image = DefaultEngineImage
	}
	if cfg.HostPort == "" {
		cfg.HostPort = DefaultEngineHostPort
	}
	if cfg.ContainerPort == "" {
		cfg.ContainerPort = DefaultEngineContainerPort
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = DefaultStopGrace
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	proto, port := nat.SplitProtoPort(cfg.ContainerPort)
	containerPort, err := nat.NewPort(proto, port)
	if err != nil {
		return nil, fmt.Errorf("invalid container port %q: %w", cfg.ContainerPort, err)
	}

	var memory int64
	if cfg.Memory != "" {
		memory, err = units.RAMInBytes(cfg.Memory)
		if err != nil {
			return nil, fmt.Errorf("invalid memory limit %q: %w", cfg.Memory, err)
		}
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	labels := map[string]string{EngineLabel: "true"}
	for k, v := range cfg.Labels {
		labels[k] = v
	}

	url := "http://localhost:" + cfg.HostPort
	return &DockerServer{
		cli:           cli,
		containerName: cfg.ContainerName,
		imageName:     cfg.Image,
		hostPort:      cfg.HostPort,
		containerPort: containerPort,
		memory:        memory,
		cmd:           cfg.Cmd,
		labels:        labels,
		health:        cfg.Health,
		stopGrace:     cfg.StopGrace,
		client:        api.NewClient(url, 0),
		logger:        logger.With("component", "engine-container"),
	}, nil
}

// Close closes the Docker client.
func (s *DockerServer) Close() error {
	return s.cli.Close()
}

// URL returns the engine endpoint published on the host.
func (s *DockerServer) URL() string {
	return s.client.BaseURL()
}

// Running reports whether a session is open on this server.
func (s *DockerServer) Running() bool {
	return s.running || s.external
}

// Start starts (or creates) the engine container and waits until it is
// healthy. A container that is already running is reused and left alone by
// Stop.
func (s *DockerServer) Start(ctx context.Context) error {
	if s.Running() {
		return nil
	}
	if _, err := s.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker is not running: %w", err)
	}

	status, containerID, err := s.containerStatus(ctx)
	if err != nil {
		return err
	}

	owned := true
	switch status {
	case ContainerRunning, ContainerStarting:
		s.logger.Info("engine container already running", "container", s.containerName)
		owned = false
	case ContainerStopped, ContainerCreated:
		s.logger.Info("starting existing engine container", "container", s.containerName, "state", status)
		if err := s.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start existing container: %w", err)
		}
	case ContainerNotFound:
		if err := s.createAndStart(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("container in unexpected state: %s", status)
	}

	alive := func() bool {
		st, _, err := s.containerStatus(ctx)
		return err == nil && (st == ContainerRunning || st == ContainerStarting)
	}
	if err := waitHealthy(ctx, s.client, s.health, alive, s.logger); err != nil {
		if owned {
			if stopErr := s.Stop(ctx); stopErr != nil {
				s.logger.Warn("failed to stop unhealthy engine container", "error", stopErr)
			}
		}
		return err
	}
	s.running = owned
	s.external = !owned
	s.logger.Info("engine container is ready", "url", s.URL())
	return nil
}

// Stop stops the engine container. Docker kills it after the stop grace period.
// A reused container is only released.
func (s *DockerServer) Stop(ctx context.Context) error {
	s.running = false
	if s.external {
		s.external = false
		return nil
	}
	status, containerID, err := s.containerStatus(ctx)
	if err != nil {
		return err
	}
	if status == ContainerNotFound || status == ContainerStopped || status == ContainerCreated {
		return nil
	}

	timeout := int(s.stopGrace.Seconds())
	if err := s.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// Remove stops and removes the engine container.
func (s *DockerServer) Remove(ctx context.Context) error {
	status, containerID, err := s.containerStatus(ctx)
	if err != nil {
		return err
	}
	if status == ContainerNotFound {
		return nil
	}
	if err := s.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	s.running = false
	s.external = false
	return nil
}

// Status returns the current container state.
func (s *DockerServer) Status(ctx context.Context) (ContainerStatus, error) {
	status, _, err := s.containerStatus(ctx)
	return status, err
}

// Logs returns the last tail lines of the container logs.
func (s *DockerServer) Logs(ctx context.Context, tail string) (string, error) {
	status, containerID, err := s.containerStatus(ctx)
	if err != nil {
		return "", err
	}
	if status == ContainerNotFound {
		return "", fmt.Errorf("container not found")
	}

	logs, err := s.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get logs: %w", err)
	}
	defer logs.Close()

	b, err := io.ReadAll(logs)
	if err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	return string(b), nil
}

func (s *DockerServer) createAndStart(ctx context.Context) error {
	if err := s.ensureImage(ctx); err != nil {
		return err
	}

	containerConfig := &container.Config{
		Image:  s.imageName,
		Cmd:    s.cmd,
		Labels: s.labels,
		ExposedPorts: nat.PortSet{
			s.containerPort: struct{}{},
		},
	}
	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			s.containerPort: []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: s.hostPort},
			},
		},
		Resources: container.Resources{Memory: s.memory},
	}

	s.logger.Info("creating engine container", "container", s.containerName, "image", s.imageName)
	resp, err := s.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, s.containerName)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	if err := s.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = s.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

func (s *DockerServer) containerStatus(ctx context.Context) (ContainerStatus, string, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("name", s.containerName)

	containers, err := s.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to list containers: %w", err)
	}
	if len(containers) == 0 {
		return ContainerNotFound, "", nil
	}

	c := containers[0]
	switch c.State {
	case "running":
		return ContainerRunning, c.ID, nil
	case "exited", "dead":
		return ContainerStopped, c.ID, nil
	case "created":
		return ContainerCreated, c.ID, nil
	case "restarting":
		return ContainerStarting, c.ID, nil
	default:
		return ContainerStatus(c.State), c.ID, nil
	}
}

func (s *DockerServer) ensureImage(ctx context.Context) error {
	if _, _, err := s.cli.ImageInspectWithRaw(ctx, s.imageName); err == nil {
		return nil
	}

	s.logger.Info("pulling engine image", "image", s.imageName)
	reader, err := s.cli.ImagePull(ctx, s.imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}
