package tools

import (
	"context"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/reasonbench/internal/testutil"
)

func TestNewDockerServer_Defaults(t *testing.T) {
	s, err := NewDockerServer(DockerServerConfig{})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "http://localhost:"+DefaultEngineHostPort, s.URL())
	assert.Equal(t, DefaultEngineContainerName, s.containerName)
	assert.Equal(t, "8080/tcp", string(s.containerPort))
	assert.Zero(t, s.memory)
	assert.Equal(t, "true", s.labels[EngineLabel])
	assert.False(t, s.Running())
}

func TestNewDockerServer_Memory(t *testing.T) {
	s, err := NewDockerServer(DockerServerConfig{Memory: "4g"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, int64(4<<30), s.memory)

	_, err = NewDockerServer(DockerServerConfig{Memory: "lots"})
	assert.Error(t, err)
}

func TestNewDockerServer_InvalidPort(t *testing.T) {
	_, err := NewDockerServer(DockerServerConfig{ContainerPort: "http/tcp"})
	assert.Error(t, err)
}

func echoEngineConfig(t *testing.T) DockerServerConfig {
	t.Helper()
	port, err := testutil.FindFreePort()
	require.NoError(t, err)
	return DockerServerConfig{
		Image:         "hashicorp/http-echo:1.0",
		ContainerName: testutil.UniqueContainerName(t, "engine"),
		HostPort:      port,
		ContainerPort: "5678/tcp",
		Cmd:           []string{"-text={}"},
		Labels:        testutil.ContainerLabels(t),
		Health:        HealthConfig{Attempts: 30, Interval: 500 * time.Millisecond},
		StopGrace:     time.Second,
	}
}

func TestDockerServer_Lifecycle(t *testing.T) {
	testutil.RequireDocker(t)

	s, err := NewDockerServer(echoEngineConfig(t))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Running())

	status, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContainerRunning, status)

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Running())
	status, err = s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContainerStopped, status)
}

func TestDockerServer_ReusesRunningContainer(t *testing.T) {
	testutil.RequireDocker(t)
	cfg := echoEngineConfig(t)
	ctx := context.Background()

	owner, err := NewDockerServer(cfg)
	require.NoError(t, err)
	defer owner.Close()
	require.NoError(t, owner.Start(ctx))
	defer func() { _ = owner.Stop(ctx) }()

	session, err := NewDockerServer(cfg)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Start(ctx))
	assert.True(t, session.Running())
	require.NoError(t, session.Stop(ctx))
	assert.False(t, session.Running())

	status, err := owner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContainerRunning, status)
}

func TestDockerServer_StartsCreatedContainer(t *testing.T) {
	cli := testutil.RequireDocker(t)
	cfg := echoEngineConfig(t)
	ctx := context.Background()

	s, err := NewDockerServer(cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ensureImage(ctx))
	_, err = cli.ContainerCreate(ctx, &container.Config{
		Image:        cfg.Image,
		Cmd:          cfg.Cmd,
		Labels:       s.labels,
		ExposedPorts: nat.PortSet{s.containerPort: struct{}{}},
	}, &container.HostConfig{
		PortBindings: nat.PortMap{s.containerPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: cfg.HostPort}}},
	}, nil, nil, cfg.ContainerName)
	require.NoError(t, err)

	status, err := s.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, ContainerCreated, status)

	require.NoError(t, s.Start(ctx))
	status, err = s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContainerRunning, status)
	require.NoError(t, s.Stop(ctx))
}
