package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Config file is optional; defaults and environment variables cover
	// the rest.
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvironmentOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func applyEnvironmentOverrides(cfg *Config) {
	if name := os.Getenv("RANGEKV_CLUSTER_NAME"); name != "" {
		cfg.Cluster.Name = name
	}
	if v := os.Getenv("RANGEKV_NODE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cluster.NodeCount = n
		}
	}
	if v := os.Getenv("RANGEKV_REPLICATION_FACTOR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cluster.ReplicationFactor = n
		}
	}
	if v := os.Getenv("RANGEKV_MAX_KEY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cluster.MaxKey = n
		}
	}
	if v := os.Getenv("RANGEKV_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Cluster.Seed = n
		}
	}
	if v := os.Getenv("RANGEKV_WRITE_CONSISTENCY"); v != "" {
		cfg.Cluster.WriteConsistency = v
	}
	if v := os.Getenv("RANGEKV_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
