package config

import "time"

// Config holds reasonbench configuration.
// Stored at: {home}/config.yaml or ./config.yaml
type Config struct {
	DLV     DLVConfig     `mapstructure:"dlv" yaml:"dlv"`
	Vadalog VadalogConfig `mapstructure:"vadalog" yaml:"vadalog"`
	Run     RunConfig     `mapstructure:"run" yaml:"run"`
}

// DLVConfig configures the DLV^E wrapper.
type DLVConfig struct {
	Binary string `mapstructure:"binary" yaml:"binary"` // supports ${ENV_VAR} syntax
}

// VadalogConfig configures the Vadalog wrapper and its engine server.
type VadalogConfig struct {
	Binary string       `mapstructure:"binary" yaml:"binary"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// Server modes.
const (
	ServerModeProcess = "process" // java -jar on the host
	ServerModeDocker  = "docker"  // engine container
	ServerModeNone    = "none"    // managed outside reasonbench
)

// ServerConfig configures the Vadalog engine server.
type ServerConfig struct {
	Mode     string `mapstructure:"mode" yaml:"mode"`
	JavaHome string `mapstructure:"java_home" yaml:"java_home"`
	Root     string `mapstructure:"root" yaml:"root"` // engine checkout, working dir of the server
	Jar      string `mapstructure:"jar" yaml:"jar"`   // relative to Root
	URL      string `mapstructure:"url" yaml:"url"`

	HealthAttempts        int     `mapstructure:"health_attempts" yaml:"health_attempts"`
	HealthIntervalSeconds float64 `mapstructure:"health_interval_seconds" yaml:"health_interval_seconds"`
	StopGraceSeconds      float64 `mapstructure:"stop_grace_seconds" yaml:"stop_grace_seconds"`

	Docker DockerConfig `mapstructure:"docker" yaml:"docker"`
}

// DockerConfig holds the engine container configuration.
type DockerConfig struct {
	Image         string `mapstructure:"image" yaml:"image"`
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	Port          string `mapstructure:"port" yaml:"port"`                     // host port
	ContainerPort string `mapstructure:"container_port" yaml:"container_port"` // e.g. 8080/tcp
	Memory        string `mapstructure:"memory" yaml:"memory"`                 // e.g. 4g
}

// RunConfig holds defaults for tool invocations.
type RunConfig struct {
	TimeoutSeconds float64 `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	ResultsDir     string  `mapstructure:"results_dir" yaml:"results_dir"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DLV: DLVConfig{
			Binary: "bin/dlv-wrapper",
		},
		Vadalog: VadalogConfig{
			Binary: "bin/vadalog-wrapper",
			Server: ServerConfig{
				Mode:                  ServerModeProcess,
				JavaHome:              "${HOME}/.sdkman/candidates/java/current",
				Root:                  "third_party/vadalog-engine-bankitalia",
				Jar:                   "target/VadaEngine-1.10.6.jar",
				URL:                   "http://localhost:8080",
				HealthAttempts:        10,
				HealthIntervalSeconds: 1,
				StopGraceSeconds:      10,
				Docker: DockerConfig{
					Image:         "vadalog-engine:1.10.6",
					ContainerName: "reasonbench-vadalog",
					Port:          "8080",
					ContainerPort: "8080/tcp",
					Memory:        "4g",
				},
			},
		},
		Run: RunConfig{
			TimeoutSeconds: 5,
			ResultsDir:     "results",
		},
	}
}

// Seconds converts a float number of seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Timeout returns the default run timeout.
func (r RunConfig) Timeout() time.Duration {
	return Seconds(r.TimeoutSeconds)
}

// HealthInterval returns the delay between health probes.
func (s ServerConfig) HealthInterval() time.Duration {
	return Seconds(s.HealthIntervalSeconds)
}

// StopGrace returns how long the server gets to exit after terminate.
func (s ServerConfig) StopGrace() time.Duration {
	return Seconds(s.StopGraceSeconds)
}
