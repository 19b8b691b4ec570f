package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/reasonbench/internal/result"
)

type fakeServer struct {
	running bool
	starts  int
	stops   int
	err     error
}

func (s *fakeServer) Start(context.Context) error {
	s.starts++
	if s.err != nil {
		return s.err
	}
	s.running = true
	return nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.stops++
	s.running = false
	return nil
}

func (s *fakeServer) Running() bool { return s.running }
func (s *fakeServer) URL() string   { return "http://localhost:0" }

func TestVadalog_CLIArgs(t *testing.T) {
	tool, err := NewVadalog(Options{BinaryPath: "bin/vadalog-wrapper"})
	require.NoError(t, err)

	binds := []Bind{
		{PredicateName: "own", DataFormat: "csv", DatasetPath: "/data/own.csv"},
		{PredicateName: "person", DataFormat: "csv", DatasetPath: "/data/person.csv"},
	}
	args, err := tool.CLIArgs("p.vada", []string{"ignored.data"}, RunConfig{Binds: binds}, "/tmp/w")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bin/vadalog-wrapper", "--program", "p.vada",
		"--bind", "own:csv:/data/own.csv", "person:csv:/data/person.csv",
		"--working-dir", "/tmp/w",
	}, args)
}

func TestVadalog_CLIArgs_NoBinds(t *testing.T) {
	tool, err := NewVadalog(Options{BinaryPath: "v"})
	require.NoError(t, err)

	args, err := tool.CLIArgs("p.vada", nil, RunConfig{}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "--program", "p.vada"}, args)
}

func TestVadalog_CollectStatistics(t *testing.T) {
	tool, err := NewVadalog(Options{BinaryPath: "v"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		output string
		status result.Status
		atoms  *int
	}{
		{
			name:   "first list in document order",
			output: `{"resultSet": {"z": [[1], [2], [3]], "a": [[1]]}}`,
			status: result.StatusSuccess,
			atoms:  result.Int(3),
		},
		{
			name:   "key match is case sensitive",
			output: `{"resultSet": {"a": [[1]]}, "resultset": {"b": [[1], [2], [3]]}}`,
			status: result.StatusSuccess,
			atoms:  result.Int(1),
		},
		{
			name:   "empty result set",
			output: `{"resultSet": {}}`,
			status: result.StatusSuccess,
			atoms:  result.Int(0),
		},
		{
			name:   "missing result set",
			output: `{"id": 1}`,
			status: result.StatusError,
		},
		{
			name:   "result set is not a map of lists",
			output: `{"resultSet": {"q": 1}}`,
			status: result.StatusError,
		},
		{
			name:   "not json",
			output: "Exception in thread main",
			status: result.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tool.CollectStatistics(tt.output)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.atoms, res.NbAtoms)
		})
	}
}

func TestVadalog_Session(t *testing.T) {
	server := &fakeServer{}
	tool, err := NewVadalog(Options{BinaryPath: "v", Server: server})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, tool.StartSession(ctx))
	require.NoError(t, tool.StartSession(ctx))
	assert.Equal(t, 1, server.starts)
	assert.True(t, server.Running())

	require.NoError(t, tool.EndSession(ctx))
	require.NoError(t, tool.EndSession(ctx))
	assert.Equal(t, 1, server.stops)
	assert.False(t, server.Running())
}

func TestVadalog_SessionWithoutServer(t *testing.T) {
	tool, err := NewVadalog(Options{BinaryPath: "v"})
	require.NoError(t, err)
	assert.NoError(t, tool.StartSession(context.Background()))
	assert.NoError(t, tool.EndSession(context.Background()))
}

type closingServer struct {
	fakeServer
	closed int
}

func (s *closingServer) Close() error {
	s.closed++
	return nil
}

func TestVadalog_Close(t *testing.T) {
	server := &closingServer{}
	tool, err := NewVadalog(Options{BinaryPath: "v", Server: server})
	require.NoError(t, err)

	require.NoError(t, Close(tool))
	assert.Equal(t, 1, server.closed)
	assert.Zero(t, server.stops)

	noServer, err := NewVadalog(Options{BinaryPath: "v"})
	require.NoError(t, err)
	assert.NoError(t, Close(noServer))
}
