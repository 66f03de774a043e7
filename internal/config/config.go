// Package config loads the gateway's YAML configuration: the VM-side and
// PX4-side network endpoints, logging, metrics, and the companion
// simulator-coupler's own endpoint pair.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level gateway configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Network    NetworkConfig    `yaml:"network"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Simcoupler SimcouplerConfig `yaml:"simcoupler"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level           string `yaml:"level"`            // debug, info, warn, error
	TimestampFormat string `yaml:"timestamp_format"` // "time" or "unix"
}

// NetworkConfig describes the gateway's two TCP endpoints: the VM-side
// server the GCS connects to, and the PX4-side client the gateway
// initiates once the VM side has accepted a peer.
type NetworkConfig struct {
	VMListenAddress string `yaml:"vm_listen_address"`
	PX4TargetHost   string `yaml:"px4_target_host"`
	PX4TargetPort   int    `yaml:"px4_target_port"`
	PX4LocalAddress string `yaml:"px4_local_address"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// SimcouplerConfig configures the unfiltered PX4-telemetry companion relay.
type SimcouplerConfig struct {
	Enabled         bool   `yaml:"enabled"`
	VMListenAddress string `yaml:"vm_listen_address"`
	PX4TargetHost   string `yaml:"px4_target_host"`
	PX4TargetPort   int    `yaml:"px4_target_port"`
}

// Load reads and validates configuration from a YAML file, applying the
// deployment defaults from spec.md §6 for anything left unset.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.TimestampFormat == "" {
		cfg.Log.TimestampFormat = "time"
	}
	if cfg.Network.VMListenAddress == "" {
		cfg.Network.VMListenAddress = "192.168.1.2:7000"
	}
	if cfg.Network.PX4TargetHost == "" {
		cfg.Network.PX4TargetHost = "172.17.0.1"
	}
	if cfg.Network.PX4TargetPort <= 0 {
		cfg.Network.PX4TargetPort = 7000
	}
	if cfg.Network.PX4LocalAddress == "" {
		cfg.Network.PX4LocalAddress = "10.0.0.11"
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = "127.0.0.1:9100"
	}
	if cfg.Simcoupler.VMListenAddress == "" {
		cfg.Simcoupler.VMListenAddress = "192.168.1.2:5555"
	}
	if cfg.Simcoupler.PX4TargetHost == "" {
		cfg.Simcoupler.PX4TargetHost = "172.17.0.1"
	}
	if cfg.Simcoupler.PX4TargetPort <= 0 {
		cfg.Simcoupler.PX4TargetPort = 5555
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Network.VMListenAddress == "" {
		return fmt.Errorf("network.vm_listen_address cannot be empty")
	}
	if c.Network.PX4TargetHost == "" {
		return fmt.Errorf("network.px4_target_host cannot be empty")
	}
	if c.Network.PX4TargetPort <= 0 || c.Network.PX4TargetPort > 65535 {
		return fmt.Errorf("network.px4_target_port must be between 1 and 65535")
	}
	if c.Simcoupler.Enabled {
		if c.Simcoupler.VMListenAddress == "" {
			return fmt.Errorf("simcoupler.vm_listen_address cannot be empty when simcoupler is enabled")
		}
		if c.Simcoupler.PX4TargetPort <= 0 || c.Simcoupler.PX4TargetPort > 65535 {
			return fmt.Errorf("simcoupler.px4_target_port must be between 1 and 65535")
		}
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
