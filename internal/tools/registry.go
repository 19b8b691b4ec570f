package tools

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jackzampolin/reasonbench/internal/config"
)

// Constructor creates a tool from options.
type Constructor func(opts Options) (Tool, error)

// Spec pairs a constructor with the options configured for it.
type Spec struct {
	New      Constructor
	Defaults Options
}

// Make builds the tool, with over applied on top of the configured defaults.
func (s Spec) Make(over Options) (Tool, error) {
	return s.New(s.Defaults.merge(over))
}

// Registry maps tool ids to their constructors.
type Registry struct {
	mu     sync.RWMutex
	specs  map[ToolID]Spec
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		specs:  make(map[ToolID]Spec),
		logger: logger,
	}
}

// Register adds or replaces the spec for id.
func (r *Registry) Register(id ToolID, spec Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[id] = spec
	r.logger.Debug("tool registered", "tool", id)
}

// Make constructs the tool registered under id.
func (r *Registry) Make(id ToolID, over Options) (Tool, error) {
	r.mu.RLock()
	spec, ok := r.specs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotConfigured, id)
	}
	return spec.Make(over)
}

// MakeByName parses name and constructs the tool.
func (r *Registry) MakeByName(name string, over Options) (Tool, error) {
	id, err := ParseToolID(name)
	if err != nil {
		return nil, err
	}
	return r.Make(id, over)
}

// IDs returns the registered tool ids, sorted.
func (r *Registry) IDs() []ToolID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ToolID, 0, len(r.specs))
	for id := range r.specs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DefaultRegistry registers every supported tool with the binaries and engine
// server from cfg. The engine server is built when a Vadalog tool is made.
func DefaultRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := NewRegistry(logger)
	r.Register(DLV, Spec{
		New:      NewDLV,
		Defaults: Options{BinaryPath: cfg.DLV.Binary, Logger: logger},
	})
	r.Register(Vadalog, Spec{
		New:      vadalogWithServer(cfg.Vadalog.Server),
		Defaults: Options{BinaryPath: cfg.Vadalog.Binary, Logger: logger},
	})
	return r
}

// vadalogWithServer builds the configured engine server unless the options
// already carry one.
func vadalogWithServer(cfg config.ServerConfig) Constructor {
	return func(opts Options) (Tool, error) {
		if opts.Server != nil {
			return NewVadalog(opts)
		}
		server, err := NewEngineServer(cfg, opts.logger())
		if err != nil {
			return nil, err
		}
		opts.Server = server
		tool, err := NewVadalog(opts)
		if err != nil {
			_ = closeServer(server)
			return nil, err
		}
		return tool, nil
	}
}
