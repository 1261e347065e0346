package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ClusterConfig holds bootstrap parameters for the cluster. The range
// assignment derived from it is static for the cluster's lifetime.
type ClusterConfig struct {
	Name              string        `yaml:"name" mapstructure:"name"`
	NodeCount         int           `yaml:"node_count" mapstructure:"node_count"`
	ReplicationFactor int           `yaml:"replication_factor" mapstructure:"replication_factor"`
	MaxKey            int           `yaml:"max_key" mapstructure:"max_key"`
	Seed              int64         `yaml:"seed" mapstructure:"seed"`
	ColocateLeases    bool          `yaml:"colocate_leases" mapstructure:"colocate_leases"`
	WriteConsistency  string        `yaml:"write_consistency" mapstructure:"write_consistency"`
	RequestTimeout    time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// MetricsConfig holds metrics exposure configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Config represents the complete configuration for a rangekv cluster
type Config struct {
	Cluster ClusterConfig `yaml:"cluster" mapstructure:"cluster"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// Default returns a baseline configuration.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults sets default values for unspecified configuration
func setDefaults(cfg *Config) {
	if cfg.Cluster.Name == "" {
		cfg.Cluster.Name = "rangekv"
	}
	if cfg.Cluster.NodeCount == 0 {
		cfg.Cluster.NodeCount = 5
	}
	if cfg.Cluster.ReplicationFactor == 0 {
		cfg.Cluster.ReplicationFactor = 3
	}
	if cfg.Cluster.MaxKey == 0 {
		cfg.Cluster.MaxKey = 100
	}
	if cfg.Cluster.WriteConsistency == "" {
		cfg.Cluster.WriteConsistency = "quorum"
	}
	if cfg.Cluster.RequestTimeout == 0 {
		cfg.Cluster.RequestTimeout = 3 * time.Second
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9100
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Dump renders the effective configuration as yaml, for logging at
// startup.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(out), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Cluster.NodeCount < 3 {
		return fmt.Errorf("cluster.node_count must be at least 3, got %d", c.Cluster.NodeCount)
	}
	if c.Cluster.ReplicationFactor < 3 {
		return fmt.Errorf("cluster.replication_factor must be at least 3, got %d", c.Cluster.ReplicationFactor)
	}
	if c.Cluster.ReplicationFactor > c.Cluster.NodeCount {
		return fmt.Errorf("cluster.replication_factor %d exceeds node_count %d",
			c.Cluster.ReplicationFactor, c.Cluster.NodeCount)
	}
	if c.Cluster.MaxKey <= 0 {
		return fmt.Errorf("cluster.max_key must be positive, got %d", c.Cluster.MaxKey)
	}
	if c.Cluster.RequestTimeout <= 0 {
		return fmt.Errorf("cluster.request_timeout must be positive")
	}
	switch c.Cluster.WriteConsistency {
	case "one", "quorum", "all":
	default:
		return fmt.Errorf("cluster.write_consistency must be one of one, quorum, all; got %q",
			c.Cluster.WriteConsistency)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535")
	}
	return nil
}
