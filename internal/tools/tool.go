// Package tools wraps the external reasoning engines behind one Tool contract:
// CLI construction, output statistics, and an optional engine-server session.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackzampolin/reasonbench/internal/result"
)

// ToolID identifies a supported reasoning engine.
type ToolID string

const (
	Vadalog ToolID = "vadalog"
	DLV     ToolID = "dlv"
)

// AllToolIDs lists every supported engine.
func AllToolIDs() []ToolID {
	return []ToolID{Vadalog, DLV}
}

// ParseToolID converts a tool name into a ToolID.
func ParseToolID(s string) (ToolID, error) {
	switch id := ToolID(strings.ToLower(strings.TrimSpace(s))); id {
	case Vadalog, DLV:
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
	}
}

var (
	ErrUnknownTool       = errors.New("unknown tool")
	ErrToolNotConfigured = errors.New("tool not configured")
	ErrNoDatasets        = errors.New("at least one dataset is required")
	ErrServerUnhealthy   = errors.New("engine server does not respond")
	ErrInvalidBind       = errors.New("invalid bind parameter")
)

// RunConfig carries tool-specific run settings.
type RunConfig struct {
	Binds []Bind // vadalog only
}

// Tool is one external reasoning engine.
type Tool interface {
	ID() ToolID
	// Name is the display name used in reports.
	Name() string
	BinaryPath() string

	// CLIArgs builds the full argument list, binary included.
	CLIArgs(program string, datasets []string, cfg RunConfig, workingDir string) ([]string, error)

	// CollectStatistics parses the engine's stdout. It never fails: output it
	// cannot interpret yields a StatusError result.
	CollectStatistics(output string) *result.Result

	StartSession(ctx context.Context) error
	EndSession(ctx context.Context) error
}

// Options configure a tool instance. Zero fields mean "not set".
type Options struct {
	BinaryPath string
	Server     EngineServer
	Logger     *slog.Logger
}

// merge returns o with every non-zero field of over applied.
func (o Options) merge(over Options) Options {
	if over.BinaryPath != "" {
		o.BinaryPath = over.BinaryPath
	}
	if over.Server != nil {
		o.Server = over.Server
	}
	if over.Logger != nil {
		o.Logger = over.Logger
	}
	return o
}

// Close releases resources held by tool, if it holds any.
func Close(tool Tool) error {
	if c, ok := tool.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeServer(s EngineServer) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
