// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	"crossover/internal/config"
)

// Stream is the codec boundary: a duplex PortAudio stream whose
// callback is the "interrupt context" of the pipeline. The callback
// only moves words between the hardware buffers and the engine's
// ping-pong transfer storage and posts notifications; all processing
// happens on the engine's goroutine.
type Stream struct {
	engine *Engine

	inputDevice  *portaudio.DeviceInfo
	outputDevice *portaudio.DeviceInfo
	latency      time.Duration
	stream       *portaudio.Stream

	captureHalf Half
	lastPlaySeq int64
}

// NewStream resolves the configured devices and prepares a codec
// stream over the engine's transfer storage. PortAudio must already be
// initialized.
func NewStream(cfg *config.Config, engine *Engine) (*Stream, error) {
	in, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, fmt.Errorf("input device: %w", err)
	}
	if in.MaxInputChannels < config.InputChannels {
		return nil, fmt.Errorf("device %q has %d input channels, need %d",
			in.Name, in.MaxInputChannels, config.InputChannels)
	}

	out, err := OutputDevice(cfg.Audio.OutputDevice)
	if err != nil {
		return nil, fmt.Errorf("output device: %w", err)
	}
	if out.MaxOutputChannels < config.OutputChannels {
		return nil, fmt.Errorf("device %q has %d output channels, need %d",
			out.Name, out.MaxOutputChannels, config.OutputChannels)
	}

	s := &Stream{
		engine:       engine,
		inputDevice:  in,
		outputDevice: out,
		lastPlaySeq:  -1,
	}
	if cfg.Audio.LowLatency {
		s.latency = in.DefaultLowInputLatency
	} else {
		s.latency = in.DefaultHighInputLatency
	}
	return s, nil
}

// Start opens and starts the duplex stream.
func (s *Stream) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: config.InputChannels,
			Device:   s.inputDevice,
			Latency:  s.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: config.OutputChannels,
			Device:   s.outputDevice,
			Latency:  s.latency,
		},
		FramesPerBuffer: s.engine.cfg.Audio.FrameSize,
		SampleRate:      s.engine.cfg.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, s.transfer)
	if err != nil {
		return fmt.Errorf("failed to open duplex stream: %w", err)
	}
	s.stream = stream

	s.captureHalf = FirstHalf
	s.lastPlaySeq = -1

	if err := s.stream.Start(); err != nil {
		s.stream.Close()
		s.stream = nil
		return fmt.Errorf("failed to start duplex stream: %w", err)
	}
	return nil
}

// Stop stops and closes the duplex stream. Safe to call when not
// started.
func (s *Stream) Stop() error {
	if s.stream == nil {
		return nil
	}
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	s.stream = nil
	if stopErr != nil {
		return fmt.Errorf("failed to stop duplex stream: %w", stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close duplex stream: %w", closeErr)
	}
	return nil
}

// transfer is the duplex callback.
// Performance critical:
//   - Runs on the PortAudio callback thread (locked to its OS thread)
//   - Only copies into/out of pre-allocated transfer storage
//   - Never blocks: notification post is a non-blocking send
func (s *Stream) transfer(in, out []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e := s.engine

	// Capture side: fill the active half, commit it, flip.
	capWords := e.transfer.HalfWords(Capture)
	off := int(s.captureHalf) * capWords
	copy(e.captureBuf[off:off+capWords], in)
	e.transfer.MarkHalfReady(Capture, s.captureHalf)
	s.captureHalf = s.captureHalf.Other()

	// Playback side: emit the committed half. A repeated sequence
	// number means processing missed its slot; replay the stale half
	// and count the underflow.
	playOff, seq, err := e.transfer.PeekCommitted(Playback)
	if err != nil {
		for i := range out {
			out[i] = 0
		}
	} else {
		if seq == s.lastPlaySeq {
			e.countUnderflow()
		}
		s.lastPlaySeq = seq
		copy(out, e.playbackBuf[playOff:playOff+len(out)])
	}

	e.NotifyFrameReady()
}
