package tools

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/reasonbench/internal/result"
)

//go:embed resultset.schema.json
var resultSetSchemaJSON []byte

var resultSetSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("resultset.schema.json", bytes.NewReader(resultSetSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load result set schema: %w", err)
	}
	schema, err := compiler.Compile("resultset.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile result set schema: %w", err)
	}
	return schema, nil
})

// VadalogTool wraps the Vadalog engine client. The engine itself runs as a
// server that the tool starts for the duration of a session.
type VadalogTool struct {
	binaryPath string
	server     EngineServer // nil when the server is managed elsewhere
	logger     *slog.Logger
}

var _ Tool = (*VadalogTool)(nil)

// NewVadalog creates a Vadalog tool.
func NewVadalog(opts Options) (Tool, error) {
	if opts.BinaryPath == "" {
		return nil, fmt.Errorf("%s: binary path is required", Vadalog)
	}
	return &VadalogTool{
		binaryPath: opts.BinaryPath,
		server:     opts.Server,
		logger:     opts.logger().With("tool", Vadalog),
	}, nil
}

func (t *VadalogTool) ID() ToolID         { return Vadalog }
func (t *VadalogTool) Name() string       { return "Vadalog" }
func (t *VadalogTool) BinaryPath() string { return t.binaryPath }

// Server returns the engine server, or nil.
func (t *VadalogTool) Server() EngineServer { return t.server }

// CLIArgs builds: binary --program P [--bind B1 B2 ...] [--working-dir W].
// Datasets reach the engine through binds only.
func (t *VadalogTool) CLIArgs(program string, _ []string, cfg RunConfig, workingDir string) ([]string, error) {
	args := []string{t.binaryPath, "--program", program}
	if len(cfg.Binds) > 0 {
		args = append(args, "--bind")
		for _, b := range cfg.Binds {
			args = append(args, b.String())
		}
	}
	if workingDir != "" {
		args = append(args, "--working-dir", workingDir)
	}
	return args, nil
}

// CollectStatistics expects a JSON document whose resultSet maps predicate
// names to value lists; nb_atoms is the length of the first list.
func (t *VadalogTool) CollectStatistics(output string) *result.Result {
	n, err := countFirstResultSet([]byte(output))
	if err != nil {
		t.logger.Debug("unparseable engine output", "error", err)
		return &result.Result{Status: result.StatusError}
	}
	return &result.Result{Status: result.StatusSuccess, NbAtoms: result.Int(n)}
}

func countFirstResultSet(data []byte) (int, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := resultSetSchema()
	if err != nil {
		return 0, err
	}
	if err := schema.Validate(doc); err != nil {
		return 0, fmt.Errorf("output does not match schema: %w", err)
	}

	// Struct decoding matches keys case-insensitively; index the exact key.
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return 0, err
	}
	resultSet, ok := envelope["resultSet"]
	if !ok {
		return 0, fmt.Errorf("output has no resultSet")
	}

	// Walk tokens so "first" means first in document order.
	dec := json.NewDecoder(bytes.NewReader(resultSet))
	if _, err := dec.Token(); err != nil { // {
		return 0, err
	}
	if !dec.More() {
		return 0, nil
	}
	if _, err := dec.Token(); err != nil { // predicate name
		return 0, err
	}
	var values []json.RawMessage
	if err := dec.Decode(&values); err != nil {
		return 0, err
	}
	return len(values), nil
}

// StartSession starts the engine server unless it is already running.
func (t *VadalogTool) StartSession(ctx context.Context) error {
	if t.server == nil || t.server.Running() {
		return nil
	}
	t.logger.Info("starting Vadalog server", "url", t.server.URL())
	return t.server.Start(ctx)
}

// Close releases the engine server's resources. It does not stop the server.
func (t *VadalogTool) Close() error {
	return closeServer(t.server)
}

// EndSession stops the engine server if it is running.
func (t *VadalogTool) EndSession(ctx context.Context) error {
	if t.server == nil || !t.server.Running() {
		return nil
	}
	t.logger.Info("stopping Vadalog server")
	return t.server.Stop(ctx)
}
