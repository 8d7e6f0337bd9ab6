package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAggregator      = "infores:biothings-explorer"
	DefaultServiceProvider = "infores:service-provider-trapi"
	DefaultToolName        = "BTE"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type ProvenanceConfig struct {
	Aggregator         string `toml:"aggregator"`
	ServiceProvider    string `toml:"service_provider"`
	UseServiceProvider bool   `toml:"use_service_provider"`
	// ToolName is how terminate messages refer to this service.
	ToolName string `toml:"tool_name"`
}

// Source returns the infores id credited on edges this service creates.
func (p ProvenanceConfig) Source() string {
	if p.UseServiceProvider {
		return p.ServiceProvider
	}
	return p.Aggregator
}

type PathfinderConfig struct {
	TemplateConcurrency int `toml:"template_concurrency"`
	MaxResults          int `toml:"max_results"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Enabled reports whether results should be exported to Memgraph.
func (m MemgraphConfig) Enabled() bool {
	return m.URI != ""
}

type TelemetryConfig struct {
	ServiceName string `toml:"service_name"`
	StdoutTrace bool   `toml:"stdout_trace"`
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Provenance ProvenanceConfig `toml:"provenance"`
	Pathfinder PathfinderConfig `toml:"pathfinder"`
	Memgraph   MemgraphConfig   `toml:"memgraph"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Provenance: ProvenanceConfig{
			Aggregator:      DefaultAggregator,
			ServiceProvider: DefaultServiceProvider,
			ToolName:        DefaultToolName,
		},
		Pathfinder: PathfinderConfig{
			TemplateConcurrency: 3,
			MaxResults:          500,
		},
		Telemetry: TelemetryConfig{ServiceName: "creative"},
	}
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables when present.
func (c *Config) ApplyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if uri := os.Getenv("MEMGRAPH_URI"); uri != "" {
		c.Memgraph.URI = uri
	}
	if user := os.Getenv("MEMGRAPH_USER"); user != "" {
		c.Memgraph.User = user
	}
	if pass := os.Getenv("MEMGRAPH_PASSWORD"); pass != "" {
		c.Memgraph.Password = pass
	}
	if v := os.Getenv("PROVENANCE_USES_SERVICE_PROVIDER"); v != "" {
		use, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PROVENANCE_USES_SERVICE_PROVIDER %q: %w", v, err)
		}
		c.Provenance.UseServiceProvider = use
	}
	if v := os.Getenv("PATHFINDER_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PATHFINDER_MAX_RESULTS %q: %w", v, err)
		}
		c.Pathfinder.MaxResults = n
	}
	return nil
}
