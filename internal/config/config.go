// SPDX-License-Identifier: MIT
package config

import "time"

// Core constants that define the boundaries and defaults for the
// crossover processing engine. The channel topology (2 in, 4 out) and
// the 24-bit transport format mirror the hardware this engine fronts.
const (
	// Fixed channel topology.
	InputChannels  = 2 // Stereo analog input
	OutputChannels = 4 // Four-way amplifier outputs

	// Transport sample format: 24-bit audio in a 32-bit container.
	BitDepth  = 24
	FullScale = 1<<(BitDepth-1) - 1 // Maximum magnitude of a transport word

	// Default values for the engine configuration.
	DefaultInputDevice  = MinDeviceID // System default capture device
	DefaultOutputDevice = MinDeviceID // System default playback device
	DefaultSampleRate   = 48000       // Matches the codec master clock
	DefaultFrameSize    = 64          // Samples per frame (power of 2)
	DefaultLowLatency   = false
	DefaultLogLevel     = "info"

	// Hardware and processing limits.
	MinDeviceID   = -1     // -1 selects the system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxFrameSize  = 8192   // Maximum samples per frame (power of 2)

	// DSP parameter ranges enforced at the setter boundary.
	MinGainDB    = -80.0 // Treated as silence
	MaxGainDB    = 12.0
	MinFrequency = 20.0
	MaxFrequency = 20000.0
	MinQ         = 0.1
	MaxQ         = 10.0
	MaxDelayMs   = 20.0 // Per-channel alignment delay budget
	EQBands      = 5    // Parametric bands per output channel

	// Dynamics parameter ranges.
	MinThresholdDB = -60.0
	MaxThresholdDB = 0.0
	MinRatio       = 1.0
	MaxRatio       = 20.0
	MinAttackMs    = 0.1
	MaxAttackMs    = 100.0
	MinReleaseMs   = 10.0
	MaxReleaseMs   = 1000.0
	MaxMakeupDB    = 24.0
	MaxKneeDB      = 24.0

	// Channel display name length limit, mirroring the hardware panel.
	MaxChannelNameLen = 15

	// Metering: RMS window length and exponential decay constant.
	MeterWindow = 16
	MeterDecay  = 0.90

	// Fault recovery policy. Recovery is retried a bounded number of
	// times with linear backoff; afterwards the engine stays in the
	// error state with muted output.
	MaxRecoveryAttempts = 3
	RecoveryBackoff     = 10 * time.Millisecond

	// Recording: consecutive write failures tolerated before the
	// recorder stops itself.
	MaxConsecutiveWriteFailures = 5
)

// Config holds all runtime options for the engine. It is built from
// defaults, an optional YAML file, environment overrides and command
// line flags, in that order.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Audio     AudioConfig     `yaml:"audio"`
	Recording RecordingConfig `yaml:"recording"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// PresetPath, when set, is loaded into the configuration store
	// before the pipeline starts.
	PresetPath string `yaml:"preset"`

	// Command is a one-off CLI command ("list") executed instead of
	// running the engine.
	Command string `yaml:"-"`
}

// AudioConfig holds settings for the codec transport.
type AudioConfig struct {
	InputDevice  int     `yaml:"input_device"`  // PortAudio device index (-1 for default)
	OutputDevice int     `yaml:"output_device"` // PortAudio device index (-1 for default)
	SampleRate   float64 `yaml:"sample_rate"`   // Hz
	FrameSize    int     `yaml:"frame_size"`    // Samples per frame, power of 2
	LowLatency   bool    `yaml:"low_latency"`   // Request low latency from the device
}

// RecordingConfig holds settings for capturing the processed output to
// a WAV file.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Empty for a timestamped name
}

// TelemetryConfig holds settings for the meter/status publishers.
type TelemetryConfig struct {
	WebSocketAddr   string        `yaml:"websocket_addr"`   // Empty disables the WebSocket broadcast
	UDPEnabled      bool          `yaml:"udp_enabled"`      // Enable binary meter packets over UDP
	UDPTarget       string        `yaml:"udp_target"`       // "host:port"
	UDPInterval     time.Duration `yaml:"udp_interval"`     // Interval between meter packets
	SpectrumEnabled bool          `yaml:"spectrum_enabled"` // Enable the output spectrum analyzer
	SpectrumChannel int           `yaml:"spectrum_channel"` // Output channel tapped for analysis
	SpectrumWindow  string        `yaml:"spectrum_window"`  // Window function name (e.g. "Hann")
}

// NewConfig creates a Config with default values, typically the base
// before applying a config file or command line flags.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:  DefaultInputDevice,
			OutputDevice: DefaultOutputDevice,
			SampleRate:   DefaultSampleRate,
			FrameSize:    DefaultFrameSize,
			LowLatency:   DefaultLowLatency,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
		},
		Telemetry: TelemetryConfig{
			WebSocketAddr:   "",
			UDPEnabled:      false,
			UDPTarget:       "127.0.0.1:9090",
			UDPInterval:     50 * time.Millisecond,
			SpectrumEnabled: false,
			SpectrumChannel: 0,
			SpectrumWindow:  "Hann",
		},
	}
}

// FrameDeadline returns the wall-clock budget for one frame pass:
// frameSize / sampleRate.
func (c *Config) FrameDeadline() time.Duration {
	return time.Duration(float64(c.Audio.FrameSize) / c.Audio.SampleRate * float64(time.Second))
}
