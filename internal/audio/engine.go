// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time core of a 2-in/4-out crossover
processor:

  - Ping-pong transfer bookkeeping between the codec callback and the
    processing goroutine
  - 24-bit transport word <-> normalized float64 frame conversion
  - Routing matrix, per-output DSP chains and RMS metering
  - An Idle/Running/Error pipeline state machine with bounded fault
    recovery

Thread safety: the codec callback only copies words, marks halves
ready and posts a capacity-1 notification. The processing goroutine
does everything else with pre-allocated buffers; observers read state
and meters through atomics.
*/
package audio

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"crossover/internal/config"
	"crossover/internal/dsp"
	"crossover/internal/log"
)

// State is the pipeline lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateError:
		return "ERROR"
	default:
		return "???"
	}
}

// Codec is the transfer transport under the engine: something that
// starts delivering capture halves and consuming playback halves, and
// stops doing so. The production implementation is the PortAudio
// Stream; tests drive the engine with a fake.
type Codec interface {
	Start() error
	Stop() error
}

// DriverStatus is a point-in-time view of the pipeline for status
// surfaces and telemetry.
type DriverStatus struct {
	State           State
	Underflows      uint64
	Overruns        uint64
	TransportErrors uint64
	Recoveries      uint64

	// LastFrameDuration is the wall time of the most recent frame
	// pass; Load is that duration relative to the frame deadline.
	LastFrameDuration time.Duration
	Load              float64

	Levels [config.OutputChannels]float64 // smoothed linear RMS
}

// Engine is the pipeline controller. It owns the transfer storage, the
// frame arena, the DSP chains and the meter, and runs the per-frame
// pass Decode -> Route -> Chain -> Encode -> Meter on its processing
// goroutine.
type Engine struct {
	cfg   *config.Config
	store *Store

	transfer  *TransferManager
	converter *Converter
	chain     *dsp.Chain
	meter     *Meter
	frame     *Frame

	// Transfer storage: both ping-pong halves per direction,
	// interleaved int32 words.
	captureBuf  []int32
	playbackBuf []int32

	codec    Codec
	recorder *Recorder
	tap      FrameTap

	// Interrupt -> task handoff. Capacity 1: a committed half either
	// has a pending notification or has already been coalesced into
	// one, never more.
	frameReady chan struct{}
	errNotify  chan error
	stopCh     chan struct{}
	doneCh     chan struct{}

	state         atomic.Int32
	underflows    atomic.Uint64
	overruns      atomic.Uint64
	transportErrs atomic.Uint64
	recoveries    atomic.Uint64
	lastFrameNs   atomic.Int64

	snapshot      Snapshot
	playbackHalf  Half
	frameDeadline time.Duration
}

// FrameTap observes the processed output channels of each frame from
// the processing goroutine. It must not retain the slices.
type FrameTap func(outputs *[config.OutputChannels][]float64)

// NewEngine creates an idle engine over the given store. The codec is
// attached separately before Start.
func NewEngine(cfg *config.Config, store *Store) *Engine {
	frameSize := cfg.Audio.FrameSize
	e := &Engine{
		cfg:           cfg,
		store:         store,
		transfer:      NewTransferManager(frameSize),
		converter:     NewConverter(frameSize),
		meter:         NewMeter(),
		frame:         NewFrame(frameSize),
		captureBuf:    make([]int32, 2*frameSize*config.InputChannels),
		playbackBuf:   make([]int32, 2*frameSize*config.OutputChannels),
		frameReady:    make(chan struct{}, 1),
		errNotify:     make(chan error, 1),
		frameDeadline: cfg.FrameDeadline(),
	}

	maxDelay := int(math.Ceil(config.MaxDelayMs * cfg.Audio.SampleRate / 1000))
	e.chain = dsp.NewChain(config.OutputChannels, cfg.Audio.SampleRate, maxDelay)

	return e
}

// SetCodec attaches the transfer transport. Must be called before
// Start.
func (e *Engine) SetCodec(c Codec) {
	e.codec = c
}

// SetRecorder attaches an output recorder fed from the processing
// goroutine. Must be called before Start.
func (e *Engine) SetRecorder(r *Recorder) {
	e.recorder = r
}

// SetFrameTap attaches an observer of processed frames (spectrum
// analyzer, telemetry). Must be called before Start.
func (e *Engine) SetFrameTap(tap FrameTap) {
	e.tap = tap
}

// State returns the current pipeline state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Status returns a point-in-time view of the pipeline.
func (e *Engine) Status() DriverStatus {
	dur := time.Duration(e.lastFrameNs.Load())
	load := 0.0
	if e.frameDeadline > 0 {
		load = float64(dur) / float64(e.frameDeadline)
	}
	return DriverStatus{
		State:             e.State(),
		Underflows:        e.underflows.Load(),
		Overruns:          e.overruns.Load(),
		TransportErrors:   e.transportErrs.Load(),
		Recoveries:        e.recoveries.Load(),
		LastFrameDuration: dur,
		Load:              load,
		Levels:            e.meter.Levels(),
	}
}

// Levels returns the smoothed output meter levels.
func (e *Engine) Levels() [config.OutputChannels]float64 {
	return e.meter.Levels()
}

// Start brings the pipeline from Idle to Running: clears all DSP and
// transfer state, takes the initial config snapshot, starts the
// processing goroutine and then the codec. Starting a non-idle
// pipeline fails with ErrAlreadyRunning.
func (e *Engine) Start() error {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}

	e.resetPipeline()
	e.store.SnapshotInto(&e.snapshot)
	e.configureChains()

	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})

	// The codec starts before the processing goroutine exists and is
	// only touched again from that goroutine (recovery) or after it
	// has been joined (Stop), so codec access never overlaps.
	if e.codec != nil {
		if err := e.codec.Start(); err != nil {
			e.state.Store(int32(StateIdle))
			return fmt.Errorf("failed to start codec: %w", err)
		}
	}
	go e.processLoop()

	log.Infof("pipeline running (%d samples @ %.0f Hz, deadline %v)",
		e.cfg.Audio.FrameSize, e.cfg.Audio.SampleRate, e.frameDeadline)
	return nil
}

// Stop brings the pipeline from Running or Error back to Idle.
// Stopping an idle pipeline fails with ErrNotRunning.
func (e *Engine) Stop() error {
	s := e.State()
	if s != StateRunning && s != StateError {
		return ErrNotRunning
	}

	// Join the processing goroutine first: it may be mid-recovery and
	// about to restart the codec. Only once it has exited is stopping
	// the codec race-free and final.
	close(e.stopCh)
	<-e.doneCh

	var codecErr error
	if e.codec != nil {
		codecErr = e.codec.Stop()
	}
	e.state.Store(int32(StateIdle))

	if codecErr != nil {
		return fmt.Errorf("codec stop: %w", codecErr)
	}
	log.Infof("pipeline stopped")
	return nil
}

// NotifyFrameReady posts the frame notification from the codec
// callback. Non-blocking: when the processing goroutine has not
// consumed the previous notification yet the frames coalesce and the
// overrun counter advances.
func (e *Engine) NotifyFrameReady() {
	select {
	case e.frameReady <- struct{}{}:
	default:
		e.overruns.Add(1)
	}
}

// ReportTransportError surfaces a codec fault to the processing
// goroutine, which runs the recovery policy. Non-blocking; a fault
// arriving while one is already pending is folded into it.
func (e *Engine) ReportTransportError(err error) {
	e.transportErrs.Add(1)
	select {
	case e.errNotify <- err:
	default:
	}
}

// countUnderflow records a playback underflow detected by the codec
// callback (stale half replayed).
func (e *Engine) countUnderflow() {
	e.underflows.Add(1)
}

func (e *Engine) processLoop() {
	defer close(e.doneCh)

	for {
		select {
		case <-e.stopCh:
			return
		case err := <-e.errNotify:
			e.recover(err)
		case <-e.frameReady:
			start := time.Now()
			e.processFrame()
			dur := time.Since(start)
			e.lastFrameNs.Store(int64(dur))
			if dur > e.frameDeadline {
				// Best effort: count it and keep going. The codec
				// replays the previous half for the missed slot.
				e.overruns.Add(1)
			}
		}
	}
}

// processFrame runs one full pass over the committed capture half.
func (e *Engine) processFrame() {
	if e.State() != StateRunning {
		// Error state with the retry budget spent: swallow the frame
		// and leave the muted playback storage alone.
		e.transfer.TakeStableHalf(Capture)
		return
	}

	if gen := e.store.Generation(); gen != e.snapshot.Generation {
		e.store.SnapshotInto(&e.snapshot)
		e.configureChains()
	}

	off, err := e.transfer.TakeStableHalf(Capture)
	if err != nil {
		// Spurious notification; nothing committed.
		return
	}
	capWords := e.transfer.HalfWords(Capture)
	e.converter.Decode(e.captureBuf[off:off+capWords], e.snapshot.Inputs[:], e.frame)

	Route(e.frame, e.snapshot.Routing)

	for ch := 0; ch < config.OutputChannels; ch++ {
		e.chain.Process(ch, e.frame.Outputs[ch])
	}

	playWords := e.transfer.HalfWords(Playback)
	playOff := int(e.playbackHalf) * playWords
	e.converter.Encode(e.frame, e.snapshot.Outputs[:], e.playbackBuf[playOff:playOff+playWords])
	e.transfer.MarkHalfReady(Playback, e.playbackHalf)
	e.playbackHalf = e.playbackHalf.Other()

	e.meter.Update(e.frame)

	if e.recorder != nil {
		if err := e.recorder.WriteFrame(&e.frame.Outputs); err != nil {
			log.Warnf("recorder: %v", err)
			e.recorder = nil
		}
	}
	if e.tap != nil {
		e.tap(&e.frame.Outputs)
	}
}

// recover runs the bounded transport fault recovery policy: mute the
// output, then retry a full codec restart with linear backoff. After
// the retry budget is spent the pipeline stays in Error with muted
// output until Stop.
func (e *Engine) recover(cause error) {
	e.state.Store(int32(StateError))
	e.muteOutput()
	log.Errorf("transport fault: %v", cause)

	for attempt := 1; attempt <= config.MaxRecoveryAttempts; attempt++ {
		select {
		case <-e.stopCh:
			return
		case <-time.After(time.Duration(attempt) * config.RecoveryBackoff):
		}

		log.Warnf("recovery attempt %d/%d", attempt, config.MaxRecoveryAttempts)
		if e.codec != nil {
			if err := e.codec.Stop(); err != nil {
				log.Debugf("codec stop during recovery: %v", err)
			}
		}
		e.resetPipeline()
		e.store.SnapshotInto(&e.snapshot)
		e.configureChains()

		var err error
		if e.codec != nil {
			err = e.codec.Start()
		}
		if err == nil {
			e.recoveries.Add(1)
			e.state.Store(int32(StateRunning))
			log.Infof("pipeline recovered after %d attempt(s)", attempt)
			return
		}
		log.Errorf("recovery attempt %d failed: %v", attempt, err)
	}

	log.Errorf("recovery budget exhausted; pipeline stays in error state with muted output")
}

// resetPipeline clears every piece of per-run state: transfer
// bookkeeping, chain filter/envelope/delay state, meters, the frame
// arena and the playback words. Counters survive; they describe the
// life of the engine, not of a run.
func (e *Engine) resetPipeline() {
	e.transfer.Reset()
	e.chain.Reset()
	e.meter.Reset()
	e.frame.Clear()
	e.playbackHalf = FirstHalf
	for i := range e.playbackBuf {
		e.playbackBuf[i] = 0
	}

	// Drain any stale notifications.
	select {
	case <-e.frameReady:
	default:
	}
	select {
	case <-e.errNotify:
	default:
	}
}

// muteOutput zeroes the playback storage so a replayed half during an
// error window carries silence, never stale or corrupt samples.
func (e *Engine) muteOutput() {
	for i := range e.playbackBuf {
		e.playbackBuf[i] = 0
	}
}

func (e *Engine) configureChains() {
	e.chain.Configure(e.snapshot.Stages[:])
}
