//go:build !windows

package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/reasonbench/internal/testutil"
)

func TestProcessServer_StartStop(t *testing.T) {
	// The probe made before spawning sees no server.
	engine := testutil.NewEngineStub(t, `{"status": "ok"}`, 1)

	s := NewProcessServer(ProcessServerConfig{
		URL:       engine.URL,
		Command:   []string{"/bin/sh", "-c", "sleep 30"},
		Health:    HealthConfig{Attempts: 3, Interval: 50 * time.Millisecond},
		StopGrace: time.Second,
	})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Running())
	pid := s.Pid()
	assert.NotZero(t, pid)

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, pid, s.Pid())

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Running())
	assert.Zero(t, s.Pid())
	require.NoError(t, s.Stop(ctx))
}

func TestProcessServer_Unhealthy(t *testing.T) {
	engine := testutil.NewEngineStub(t, "not json", 0)

	s := NewProcessServer(ProcessServerConfig{
		URL:       engine.URL,
		Command:   []string{"/bin/sh", "-c", "sleep 30"},
		Health:    HealthConfig{Attempts: 3, Interval: 20 * time.Millisecond},
		StopGrace: time.Second,
	})

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrServerUnhealthy)
	assert.False(t, s.Running())
	// one probe before spawning, then every health attempt
	assert.Equal(t, 4, engine.Requests())
}

func TestProcessServer_ExitsEarly(t *testing.T) {
	port, err := testutil.FindFreePort()
	require.NoError(t, err)

	s := NewProcessServer(ProcessServerConfig{
		URL:       "http://127.0.0.1:" + port,
		Command:   []string{"/bin/sh", "-c", "exit 1"},
		Health:    HealthConfig{Attempts: 50, Interval: 20 * time.Millisecond},
		StopGrace: time.Second,
	})

	start := time.Now()
	err = s.Start(context.Background())
	assert.ErrorIs(t, err, ErrServerUnhealthy)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.False(t, s.Running())
}

func TestProcessServer_ReusesRunningServer(t *testing.T) {
	engine := testutil.NewEngineStub(t, `{}`, 0)

	s := NewProcessServer(ProcessServerConfig{
		URL:     engine.URL,
		Command: []string{"/bin/sh", "-c", "exit 1"},
	})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Running())
	assert.Zero(t, s.Pid())

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Running())
}

func TestProcessServer_DefaultCommand(t *testing.T) {
	s := NewProcessServer(ProcessServerConfig{JavaHome: "/opt/java", Jar: "target/engine.jar"})
	assert.Equal(t, []string{"/opt/java/bin/java", "-jar", "target/engine.jar"}, s.Command())
}
