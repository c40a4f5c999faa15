// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"crossover/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file at path. If path is
// empty it searches the default location ("config.yaml"); if no file is
// found, built-in defaults are used. Environment overrides are applied
// after the file, and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against the engine's hard limits.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %v outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FrameSize) {
		return fmt.Errorf("audio.frame_size %d must be a power of 2", c.Audio.FrameSize)
	}
	if c.Audio.FrameSize > MaxFrameSize {
		return fmt.Errorf("audio.frame_size %d exceeds maximum %d", c.Audio.FrameSize, MaxFrameSize)
	}
	if c.Telemetry.UDPEnabled {
		if c.Telemetry.UDPTarget == "" {
			return fmt.Errorf("telemetry.udp_target must be set when UDP is enabled")
		}
		if c.Telemetry.UDPInterval <= 0 {
			return fmt.Errorf("telemetry.udp_interval must be positive when UDP is enabled")
		}
	}
	if c.Telemetry.SpectrumChannel < 0 || c.Telemetry.SpectrumChannel >= OutputChannels {
		return fmt.Errorf("telemetry.spectrum_channel %d outside [0, %d)",
			c.Telemetry.SpectrumChannel, OutputChannels)
	}
	return nil
}

// applyEnvOverrides layers XOVER_* environment variables on top of the
// loaded configuration. Invalid values are ignored.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("XOVER_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("XOVER_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("XOVER_SAMPLE_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Audio.SampleRate = fVal
		}
	}
	if val, ok := os.LookupEnv("XOVER_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Telemetry.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("XOVER_UDP_TARGET"); ok {
		c.Telemetry.UDPTarget = val
	}
	if val, ok := os.LookupEnv("XOVER_UDP_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Telemetry.UDPInterval = dur
		}
	}
}
