// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"crossover/internal/config"
	"crossover/pkg/build"
)

// ParseArgs builds the runtime configuration from defaults, an
// optional config file and command line flags, in that order.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var configPath string
	options := config.NewConfig()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		Run: func(cmd *cobra.Command, args []string) {},
	}

	// Flags override the file, so the file loads first into a fresh
	// config and explicitly changed flags re-apply on top of it.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		merge(loaded, options, rootCmd)
		*options = *loaded
		return nil
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Codec transport.
	rootCmd.PersistentFlags().IntVarP(&options.Audio.InputDevice, "input-device", "i", config.DefaultInputDevice,
		"Capture device ID. Use the 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Audio.OutputDevice, "output-device", "o", config.DefaultOutputDevice,
		"Playback device ID. Use the 'list' command to see available devices.")
	rootCmd.PersistentFlags().Float64VarP(&options.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&options.Audio.FrameSize, "frame-size", "b", config.DefaultFrameSize,
		"Samples per frame, a power of two (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.Audio.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Request low latency from the devices")

	// Processing.
	rootCmd.PersistentFlags().StringVarP(&options.PresetPath, "preset", "p", "",
		"Preset file loaded into the configuration store at startup")

	// Recording.
	rootCmd.PersistentFlags().BoolVarP(&options.Recording.Enabled, "record", "r", false,
		"Capture the processed output to a WAV file")
	rootCmd.PersistentFlags().StringVar(&options.Recording.OutputFile, "record-file", "",
		"Recording file name. Default is output-MM-DD-YYYY-HHMMSS.wav")

	// Telemetry.
	rootCmd.PersistentFlags().StringVar(&options.Telemetry.WebSocketAddr, "ws-addr", "",
		"WebSocket telemetry listen address (e.g. :8080); empty disables it")
	rootCmd.PersistentFlags().BoolVar(&options.Telemetry.UDPEnabled, "udp-meters", false,
		"Send binary meter packets over UDP")
	rootCmd.PersistentFlags().StringVar(&options.Telemetry.UDPTarget, "udp-target", options.Telemetry.UDPTarget,
		"UDP meter packet target (host:port)")
	rootCmd.PersistentFlags().BoolVar(&options.Telemetry.SpectrumEnabled, "spectrum", false,
		"Run the output spectrum analyzer")
	rootCmd.PersistentFlags().IntVar(&options.Telemetry.SpectrumChannel, "spectrum-channel", 0,
		"Output channel tapped for spectrum analysis")

	// Diagnostics.
	rootCmd.PersistentFlags().BoolVarP(&options.Debug, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if options.Recording.Enabled && options.Recording.OutputFile == "" {
		options.Recording.OutputFile = "output-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}
	if options.Debug {
		options.LogLevel = "debug"
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// merge re-applies every flag the user set explicitly on top of the
// file-loaded config.
func merge(dst, flags *config.Config, root *cobra.Command) {
	set := func(name string) bool { return root.PersistentFlags().Changed(name) }

	if set("input-device") {
		dst.Audio.InputDevice = flags.Audio.InputDevice
	}
	if set("output-device") {
		dst.Audio.OutputDevice = flags.Audio.OutputDevice
	}
	if set("sample-rate") {
		dst.Audio.SampleRate = flags.Audio.SampleRate
	}
	if set("frame-size") {
		dst.Audio.FrameSize = flags.Audio.FrameSize
	}
	if set("low-latency") {
		dst.Audio.LowLatency = flags.Audio.LowLatency
	}
	if set("preset") {
		dst.PresetPath = flags.PresetPath
	}
	if set("record") {
		dst.Recording.Enabled = flags.Recording.Enabled
	}
	if set("record-file") {
		dst.Recording.OutputFile = flags.Recording.OutputFile
	}
	if set("ws-addr") {
		dst.Telemetry.WebSocketAddr = flags.Telemetry.WebSocketAddr
	}
	if set("udp-meters") {
		dst.Telemetry.UDPEnabled = flags.Telemetry.UDPEnabled
	}
	if set("udp-target") {
		dst.Telemetry.UDPTarget = flags.Telemetry.UDPTarget
	}
	if set("spectrum") {
		dst.Telemetry.SpectrumEnabled = flags.Telemetry.SpectrumEnabled
	}
	if set("spectrum-channel") {
		dst.Telemetry.SpectrumChannel = flags.Telemetry.SpectrumChannel
	}
	if set("verbose") {
		dst.Debug = flags.Debug
	}
}
