// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"crossover/cmd"
	"crossover/internal/analysis"
	"crossover/internal/audio"
	"crossover/internal/config"
	applog "crossover/internal/log"
	"crossover/internal/transport"
	"crossover/internal/transport/udp"
	"crossover/pkg/build"
)

const spectrumFFTSize = 1024

// main is the entry point for the crossover controller.
// The program flow is divided into three phases:
//
// 1. Startup (cold path): build info, runtime settings, PortAudio,
// argument parsing and one-off commands.
//
// 2. Concurrent (hot path): the engine's frame loop and the PortAudio
// callback run; telemetry publishers tick in the background.
//
// 3. Shutdown (cold path): signal handling, draining the recorder,
// releasing the codec.
func main() {
	// ==================== STARTUP PHASE ====================

	if err := build.Initialize(); err != nil {
		applog.Fatalf("build info: %v", err)
	}

	// One thread for the audio callback and frame loop, one for
	// telemetry and I/O.
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("portaudio: %v", err)
	}
	defer audio.Terminate()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	if cfg.Command != "" {
		if err := executeCommand(cfg.Command); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	store := audio.NewStore()
	if cfg.PresetPath != "" {
		if err := store.LoadPreset(cfg.PresetPath); err != nil {
			applog.Fatalf("preset: %v", err)
		}
		applog.Infof("Loaded preset from %s", cfg.PresetPath)
	}

	engine := audio.NewEngine(cfg, store)

	stream, err := audio.NewStream(cfg, engine)
	if err != nil {
		applog.Fatalf("stream: %v", err)
	}
	engine.SetCodec(stream)

	var recorder *audio.Recorder
	if cfg.Recording.Enabled {
		recorder, err = audio.NewRecorder(cfg.Recording.OutputFile,
			int(cfg.Audio.SampleRate), cfg.Audio.FrameSize)
		if err != nil {
			applog.Fatalf("recorder: %v", err)
		}
		engine.SetRecorder(recorder)
	}

	// Telemetry is optional and strictly off the hot path: publishers
	// read atomic meter state on their own tickers.
	var wsTransport *transport.WebSocketTransport
	var statusPub *transport.StatusPublisher
	if cfg.Telemetry.WebSocketAddr != "" {
		wsTransport = transport.NewWebSocketTransport(cfg.Telemetry.WebSocketAddr)
		statusPub = transport.NewStatusPublisher(100*time.Millisecond, engine, wsTransport)
		statusPub.Start()
	}

	var meterPub *udp.Publisher
	if cfg.Telemetry.UDPEnabled {
		sender, err := udp.NewSender(cfg.Telemetry.UDPTarget)
		if err != nil {
			applog.Fatalf("udp sender: %v", err)
		}
		meterPub, err = udp.NewPublisher(cfg.Telemetry.UDPInterval, sender, engine)
		if err != nil {
			applog.Fatalf("udp publisher: %v", err)
		}
		meterPub.Start()
	}

	if cfg.Telemetry.SpectrumEnabled && wsTransport != nil {
		analyzer, err := analysis.NewAnalyzer(spectrumFFTSize,
			cfg.Audio.SampleRate, cfg.Telemetry.SpectrumWindow, wsTransport)
		if err != nil {
			applog.Fatalf("spectrum: %v", err)
		}
		channel := cfg.Telemetry.SpectrumChannel
		engine.SetFrameTap(func(outputs *[config.OutputChannels][]float64) {
			analyzer.ProcessFrame(outputs[channel])
		})
	}

	// ==================== CONCURRENT PHASE ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// The codec starts calling the transfer callback here; everything
	// after this line shares the machine with the hot path.
	if err := engine.Start(); err != nil {
		applog.Fatalf("engine: %v", err)
	}

	fmt.Printf("%s running. '%s --help' for usage information.\n",
		build.GetBuildFlags().Name, build.GetBuildFlags().Name)

	<-done

	// ==================== SHUTDOWN PHASE ====================

	if err := engine.Stop(); err != nil {
		applog.Errorf("stopping engine: %v", err)
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			applog.Errorf("closing recorder: %v", err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
		}
	}

	if meterPub != nil {
		meterPub.Close()
	}
	if statusPub != nil {
		statusPub.Close()
	}
	if wsTransport != nil {
		wsTransport.Close()
	}
}

// executeCommand handles one-off commands that don't require the
// engine to be running.
func executeCommand(command string) error {
	switch command {
	case "list":
		return audio.ListDevices()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
