// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing-is-fine-when-empty"))
	if err == nil {
		t.Fatal("expected error for explicit missing path")
	}

	// An empty path with no config.yaml present falls back to defaults.
	dir, _ := os.Getwd()
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(dir)

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with defaults failed: %v", err)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("default sample rate = %v, want %v", cfg.Audio.SampleRate, float64(DefaultSampleRate))
	}
	if cfg.Audio.FrameSize != DefaultFrameSize {
		t.Errorf("default frame size = %d, want %d", cfg.Audio.FrameSize, DefaultFrameSize)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	content := []byte(`
log_level: debug
audio:
  sample_rate: 96000
  frame_size: 128
telemetry:
  udp_enabled: true
  udp_target: "10.0.0.1:9100"
  udp_interval: 100ms
`)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Audio.SampleRate != 96000 {
		t.Errorf("sample rate = %v, want 96000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FrameSize != 128 {
		t.Errorf("frame size = %d, want 128", cfg.Audio.FrameSize)
	}
	if !cfg.Telemetry.UDPEnabled || cfg.Telemetry.UDPTarget != "10.0.0.1:9100" {
		t.Errorf("telemetry not applied: %+v", cfg.Telemetry)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		desc   string
		mutate func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }},
		{"sample rate too high", func(c *Config) { c.Audio.SampleRate = 384000 }},
		{"frame size not power of two", func(c *Config) { c.Audio.FrameSize = 96 }},
		{"frame size too large", func(c *Config) { c.Audio.FrameSize = 16384 }},
		{"udp enabled without target", func(c *Config) {
			c.Telemetry.UDPEnabled = true
			c.Telemetry.UDPTarget = ""
		}},
		{"spectrum channel out of range", func(c *Config) { c.Telemetry.SpectrumChannel = OutputChannels }},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted invalid config: %s", tt.desc)
			}
		})
	}
}

func TestFrameDeadline(t *testing.T) {
	cfg := NewConfig()
	cfg.Audio.SampleRate = 48000
	cfg.Audio.FrameSize = 64

	got := cfg.FrameDeadline()
	want := float64(64) / 48000 * 1e9
	if diff := float64(got.Nanoseconds()) - want; diff > 1 || diff < -1 {
		t.Errorf("FrameDeadline = %v, want %vns", got, want)
	}
}
