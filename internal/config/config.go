package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. REASONBENCH_RUN_TIMEOUT_SECONDS.
const EnvPrefix = "REASONBENCH"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.reasonbench")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults registers every leaf key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("dlv.binary", d.DLV.Binary)

	v.SetDefault("vadalog.binary", d.Vadalog.Binary)
	s := d.Vadalog.Server
	v.SetDefault("vadalog.server.mode", s.Mode)
	v.SetDefault("vadalog.server.java_home", s.JavaHome)
	v.SetDefault("vadalog.server.root", s.Root)
	v.SetDefault("vadalog.server.jar", s.Jar)
	v.SetDefault("vadalog.server.url", s.URL)
	v.SetDefault("vadalog.server.health_attempts", s.HealthAttempts)
	v.SetDefault("vadalog.server.health_interval_seconds", s.HealthIntervalSeconds)
	v.SetDefault("vadalog.server.stop_grace_seconds", s.StopGraceSeconds)
	v.SetDefault("vadalog.server.docker.image", s.Docker.Image)
	v.SetDefault("vadalog.server.docker.container_name", s.Docker.ContainerName)
	v.SetDefault("vadalog.server.docker.port", s.Docker.Port)
	v.SetDefault("vadalog.server.docker.container_port", s.Docker.ContainerPort)
	v.SetDefault("vadalog.server.docker.memory", s.Docker.Memory)

	v.SetDefault("run.timeout_seconds", d.Run.TimeoutSeconds)
	v.SetDefault("run.results_dir", d.Run.ResultsDir)
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.resolve()
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file the configuration was read from, if any.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
// Long sweeps use it to pick up a new run timeout between invocations.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// resolve expands ${ENV_VAR} references in every path-like field.
func (c *Config) resolve() {
	c.DLV.Binary = ResolveEnvVars(c.DLV.Binary)
	c.Vadalog.Binary = ResolveEnvVars(c.Vadalog.Binary)
	c.Vadalog.Server.JavaHome = ResolveEnvVars(c.Vadalog.Server.JavaHome)
	c.Vadalog.Server.Root = ResolveEnvVars(c.Vadalog.Server.Root)
	c.Vadalog.Server.Jar = ResolveEnvVars(c.Vadalog.Server.Jar)
	c.Run.ResultsDir = ResolveEnvVars(c.Run.ResultsDir)
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# reasonbench configuration
# Paths use ${ENV_VAR} syntax to reference environment variables.
# Every key can be overridden with REASONBENCH_<SECTION>_<KEY>, e.g. REASONBENCH_RUN_TIMEOUT_SECONDS=60

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
