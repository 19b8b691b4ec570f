package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/reasonbench/internal/api"
	"github.com/jackzampolin/reasonbench/internal/config"
)

const (
	DefaultHealthAttempts = 10
	DefaultHealthInterval = 1 * time.Second
	DefaultStopGrace      = 10 * time.Second
)

// EngineServer is a long-lived companion process a tool talks to.
//
// Lifecycle: not running -> Start (spawn, poll health) -> running -> Stop ->
// not running. Start on a running server and Stop on a stopped one are no-ops.
// A failed health check stops the server before Start returns, so a server is
// never left half-started.
type EngineServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
	URL() string
}

// HealthConfig controls how a starting server is polled.
type HealthConfig struct {
	Attempts int
	Interval time.Duration
}

func (h HealthConfig) withDefaults() HealthConfig {
	if h.Attempts <= 0 {
		h.Attempts = DefaultHealthAttempts
	}
	if h.Interval <= 0 {
		h.Interval = DefaultHealthInterval
	}
	return h
}

// waitHealthy polls the engine until it answers with a parseable JSON body.
// alive reports whether the server is still worth waiting for.
func waitHealthy(ctx context.Context, client *api.Client, health HealthConfig, alive func() bool, logger *slog.Logger) error {
	health = health.withDefaults()
	err := retry.Do(
		func() error {
			if !alive() {
				return retry.Unrecoverable(fmt.Errorf("server exited before becoming healthy"))
			}
			return client.Ping(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(health.Attempts)),
		retry.Delay(health.Interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("engine server not ready", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("%w at %s: %v", ErrServerUnhealthy, client.BaseURL(), err)
	}
	return nil
}

// NewEngineServer builds the Vadalog engine server selected by cfg.Mode.
// Mode "none" returns nil: the engine is expected to be running already.
func NewEngineServer(cfg config.ServerConfig, logger *slog.Logger) (EngineServer, error) {
	switch cfg.Mode {
	case config.ServerModeProcess, "":
		return NewProcessServer(ProcessConfigFrom(cfg, logger)), nil
	case config.ServerModeDocker:
		s, err := NewDockerServer(DockerConfigFrom(cfg, logger))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ServerModeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown server mode: %s", cfg.Mode)
	}
}

// ProcessConfigFrom maps the server configuration onto a process server.
func ProcessConfigFrom(cfg config.ServerConfig, logger *slog.Logger) ProcessServerConfig {
	return ProcessServerConfig{
		JavaHome:  cfg.JavaHome,
		Root:      cfg.Root,
		Jar:       cfg.Jar,
		URL:       cfg.URL,
		Health:    HealthConfig{Attempts: cfg.HealthAttempts, Interval: cfg.HealthInterval()},
		StopGrace: cfg.StopGrace(),
		Logger:    logger,
	}
}

// DockerConfigFrom maps the server configuration onto a container server.
func DockerConfigFrom(cfg config.ServerConfig, logger *slog.Logger) DockerServerConfig {
	return DockerServerConfig{
		Image:         cfg.Docker.Image,
		ContainerName: cfg.Docker.ContainerName,
		HostPort:      cfg.Docker.Port,
		ContainerPort: cfg.Docker.ContainerPort,
		Memory:        cfg.Docker.Memory,
		Health:        HealthConfig{Attempts: cfg.HealthAttempts, Interval: cfg.HealthInterval()},
		StopGrace:     cfg.StopGrace(),
		Logger:        logger,
	}
}
