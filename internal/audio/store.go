// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"sync/atomic"

	"crossover/internal/config"
	"crossover/internal/dsp"
)

// ChannelState is the trim state of one input or output channel.
type ChannelState struct {
	Name   string  `yaml:"name"`
	GainDB float64 `yaml:"gain_db"`
	Mute   bool    `yaml:"mute"`
	Phase  bool    `yaml:"phase"`

	gain float64 // cached linear gain
}

// Gain returns the cached linear gain.
func (s *ChannelState) Gain() float64 {
	return s.gain
}

func newChannelState(name string) ChannelState {
	return ChannelState{Name: name, gain: 1}
}

// Snapshot is a self-consistent copy of the whole configuration,
// tagged with the generation it was taken at. The engine refreshes its
// snapshot at frame boundaries only, so a frame never sees a torn
// config.
type Snapshot struct {
	Inputs     [config.InputChannels]ChannelState
	Outputs    [config.OutputChannels]ChannelState
	Routing    RoutingConfig
	Stages     [config.OutputChannels]dsp.ChannelConfig
	Generation uint64
}

// Store owns all mutable processing configuration: channel trims, the
// routing matrix and every per-channel stage config. All writes go
// through validating setters that clamp out-of-range values; every
// successful write bumps the generation counter the engine polls.
type Store struct {
	mu sync.Mutex

	inputs  [config.InputChannels]ChannelState
	outputs [config.OutputChannels]ChannelState
	routing RoutingConfig
	stages  [config.OutputChannels]dsp.ChannelConfig

	// stereoLink mirrors setter calls onto the pair partner. It is a
	// control-surface behavior, not a processing one.
	stereoLink [config.OutputChannels / 2]bool

	generation atomic.Uint64
}

// NewStore creates a store with the factory configuration: unity trims,
// default routing, tops on outputs 0/1 (highpassed at 80 Hz) and subs
// on outputs 2/3 (lowpassed at 80 Hz).
func NewStore() *Store {
	s := &Store{routing: DefaultRouting()}

	s.inputs[0] = newChannelState("IN A")
	s.inputs[1] = newChannelState("IN B")

	names := [config.OutputChannels]string{"HIGH L", "HIGH R", "SUB L", "SUB R"}
	for ch := range s.outputs {
		s.outputs[ch] = newChannelState(names[ch])

		cfg := dsp.DefaultChannelConfig()
		cfg.Crossover.Enabled = true
		if ch < 2 {
			cfg.Crossover.HighPassFreq = 80
			cfg.Crossover.LowPassFreq = config.MaxFrequency
		} else {
			cfg.Crossover.HighPassFreq = config.MinFrequency
			cfg.Crossover.LowPassFreq = 80
		}
		s.stages[ch] = cfg
	}

	return s
}

// Generation returns the current configuration generation. It changes
// on every successful write.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// SnapshotInto copies the full configuration into snap.
func (s *Store) SnapshotInto(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Inputs = s.inputs
	snap.Outputs = s.outputs
	snap.Routing = s.routing
	snap.Stages = s.stages
	snap.Generation = s.generation.Load()
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampName(name string) string {
	if len(name) > config.MaxChannelNameLen {
		return name[:config.MaxChannelNameLen]
	}
	return name
}

func applyGain(st *ChannelState, db float64) {
	st.GainDB = clampFloat(db, config.MinGainDB, config.MaxGainDB)
	st.gain = dsp.DbToLinear(st.GainDB)
}

// --- Input channel setters ---

func (s *Store) input(ch InputChannel) (*ChannelState, error) {
	if !ch.Valid() {
		return nil, ErrInvalidChannel
	}
	return &s.inputs[ch], nil
}

// SetInputGain sets the trim gain of an input channel, clamped to the
// supported range.
func (s *Store) SetInputGain(ch InputChannel, db float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.input(ch)
	if err != nil {
		return err
	}
	applyGain(st, db)
	s.generation.Add(1)
	return nil
}

// SetInputMute mutes or unmutes an input channel.
func (s *Store) SetInputMute(ch InputChannel, mute bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.input(ch)
	if err != nil {
		return err
	}
	st.Mute = mute
	s.generation.Add(1)
	return nil
}

// SetInputPhase sets the polarity inversion of an input channel.
func (s *Store) SetInputPhase(ch InputChannel, invert bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.input(ch)
	if err != nil {
		return err
	}
	st.Phase = invert
	s.generation.Add(1)
	return nil
}

// SetInputName sets the display name of an input channel, truncated to
// the panel limit.
func (s *Store) SetInputName(ch InputChannel, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.input(ch)
	if err != nil {
		return err
	}
	st.Name = clampName(name)
	s.generation.Add(1)
	return nil
}

// InputState returns a copy of an input channel's trim state.
func (s *Store) InputState(ch InputChannel) (ChannelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.input(ch)
	if err != nil {
		return ChannelState{}, err
	}
	return *st, nil
}

// --- Output channel setters ---

func (s *Store) output(ch OutputChannel) (*ChannelState, error) {
	if !ch.Valid() {
		return nil, ErrInvalidChannel
	}
	return &s.outputs[ch], nil
}

// linked returns the partner output when the pair is stereo-linked,
// or -1.
func (s *Store) linked(ch OutputChannel) OutputChannel {
	if s.stereoLink[ch.Pair()] {
		return ch.Partner()
	}
	return -1
}

// SetOutputGain sets the trim gain of an output channel, clamped to
// the supported range. A stereo-linked partner follows.
func (s *Store) SetOutputGain(ch OutputChannel, db float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.output(ch)
	if err != nil {
		return err
	}
	applyGain(st, db)
	if p := s.linked(ch); p >= 0 {
		applyGain(&s.outputs[p], db)
	}
	s.generation.Add(1)
	return nil
}

// SetOutputMute mutes or unmutes an output channel. A stereo-linked
// partner follows.
func (s *Store) SetOutputMute(ch OutputChannel, mute bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.output(ch)
	if err != nil {
		return err
	}
	st.Mute = mute
	if p := s.linked(ch); p >= 0 {
		s.outputs[p].Mute = mute
	}
	s.generation.Add(1)
	return nil
}

// SetOutputPhase sets the polarity inversion of an output channel.
// Phase is deliberately not mirrored to a linked partner.
func (s *Store) SetOutputPhase(ch OutputChannel, invert bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.output(ch)
	if err != nil {
		return err
	}
	st.Phase = invert
	s.generation.Add(1)
	return nil
}

// SetOutputName sets the display name of an output channel, truncated
// to the panel limit.
func (s *Store) SetOutputName(ch OutputChannel, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.output(ch)
	if err != nil {
		return err
	}
	st.Name = clampName(name)
	s.generation.Add(1)
	return nil
}

// OutputState returns a copy of an output channel's trim state.
func (s *Store) OutputState(ch OutputChannel) (ChannelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.output(ch)
	if err != nil {
		return ChannelState{}, err
	}
	return *st, nil
}

// SetStereoLink links or unlinks an output pair. Linking copies the
// current trim and stage configs of the channel named first in the
// pair onto its partner so the two start identical.
func (s *Store) SetStereoLink(ch OutputChannel, link bool) error {
	if !ch.Valid() {
		return ErrInvalidChannel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stereoLink[ch.Pair()] = link
	if link {
		lead := OutputChannel(ch.Pair() * 2)
		s.outputs[lead.Partner()] = s.outputs[lead]
		s.stages[lead.Partner()] = s.stages[lead]
	}
	s.generation.Add(1)
	return nil
}

// StereoLinked reports whether the pair containing ch is linked.
func (s *Store) StereoLinked(ch OutputChannel) (bool, error) {
	if !ch.Valid() {
		return false, ErrInvalidChannel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stereoLink[ch.Pair()], nil
}

// --- Routing ---

// SetRoutingSource selects the source feeding an output channel.
func (s *Store) SetRoutingSource(ch OutputChannel, src Source) error {
	if !ch.Valid() {
		return ErrInvalidChannel
	}
	if src > SourceMix {
		src = SourceSilence
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routing.Outputs[ch].Source = src
	s.generation.Add(1)
	return nil
}

// SetMixRatio sets the mix blend of an output channel, clamped to
// [0, 1].
func (s *Store) SetMixRatio(ch OutputChannel, ratio float64) error {
	if !ch.Valid() {
		return ErrInvalidChannel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routing.Outputs[ch].MixRatio = clampFloat(ratio, 0, 1)
	s.generation.Add(1)
	return nil
}

// SetMonoSum enables or disables the global mono fold-down of the
// inputs.
func (s *Store) SetMonoSum(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routing.MonoSum = enabled
	s.generation.Add(1)
}

// Routing returns a copy of the routing matrix.
func (s *Store) Routing() RoutingConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routing
}

// --- Stage configs ---

func (s *Store) stage(ch OutputChannel) (*dsp.ChannelConfig, error) {
	if !ch.Valid() {
		return nil, ErrInvalidChannel
	}
	return &s.stages[ch], nil
}

// mirror copies the stage config onto a stereo-linked partner.
func (s *Store) mirror(ch OutputChannel) {
	if p := s.linked(ch); p >= 0 {
		s.stages[p] = s.stages[ch]
	}
}

// SetCrossover applies a crossover config with corner frequencies
// clamped to the audible band.
func (s *Store) SetCrossover(ch OutputChannel, cfg dsp.CrossoverConfig) error {
	cfg.HighPassFreq = clampFloat(cfg.HighPassFreq, config.MinFrequency, config.MaxFrequency)
	cfg.LowPassFreq = clampFloat(cfg.LowPassFreq, config.MinFrequency, config.MaxFrequency)
	if cfg.Alignment > dsp.Bessel {
		cfg.Alignment = dsp.LinkwitzRiley
	}
	if cfg.Slope > dsp.Slope48 {
		cfg.Slope = dsp.Slope24
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.Crossover = cfg
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// SetEQEnabled switches the whole EQ bank of an output channel.
func (s *Store) SetEQEnabled(ch OutputChannel, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.EQ.Enabled = enabled
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// SetEQBand applies one parametric band with frequency, gain and Q
// clamped to the supported ranges.
func (s *Store) SetEQBand(ch OutputChannel, band int, cfg dsp.EQBandConfig) error {
	if band < 0 || band >= config.EQBands {
		return ErrInvalidChannel
	}
	cfg.Frequency = clampFloat(cfg.Frequency, config.MinFrequency, config.MaxFrequency)
	cfg.GainDB = clampFloat(cfg.GainDB, -config.MaxGainDB, config.MaxGainDB)
	cfg.Q = clampFloat(cfg.Q, config.MinQ, config.MaxQ)
	if cfg.Type > dsp.BandPass {
		cfg.Type = dsp.Bell
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.EQ.Bands[band] = cfg
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// SetCompressor applies a dynamics config with every parameter clamped
// to the supported ranges.
func (s *Store) SetCompressor(ch OutputChannel, cfg dsp.CompressorConfig) error {
	cfg.ThresholdDB = clampFloat(cfg.ThresholdDB, config.MinThresholdDB, config.MaxThresholdDB)
	cfg.Ratio = clampFloat(cfg.Ratio, config.MinRatio, config.MaxRatio)
	cfg.AttackMs = clampFloat(cfg.AttackMs, config.MinAttackMs, config.MaxAttackMs)
	cfg.ReleaseMs = clampFloat(cfg.ReleaseMs, config.MinReleaseMs, config.MaxReleaseMs)
	cfg.MakeupDB = clampFloat(cfg.MakeupDB, 0, config.MaxMakeupDB)
	cfg.KneeDB = clampFloat(cfg.KneeDB, 0, config.MaxKneeDB)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.Compressor = cfg
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// SetLimiter applies a limiter config with threshold and release
// clamped to the supported ranges.
func (s *Store) SetLimiter(ch OutputChannel, cfg dsp.LimiterConfig) error {
	cfg.ThresholdDB = clampFloat(cfg.ThresholdDB, config.MinThresholdDB, config.MaxThresholdDB)
	cfg.ReleaseMs = clampFloat(cfg.ReleaseMs, config.MinReleaseMs, config.MaxReleaseMs)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.Limiter = cfg
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// SetDelay applies an alignment delay config with the time clamped to
// the per-channel budget.
func (s *Store) SetDelay(ch OutputChannel, cfg dsp.DelayConfig) error {
	cfg.TimeMs = clampFloat(cfg.TimeMs, 0, config.MaxDelayMs)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.Delay = cfg
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// SetGain applies the final trim stage config, clamped to the
// supported gain range.
func (s *Store) SetGain(ch OutputChannel, cfg dsp.GainConfig) error {
	cfg.GainDB = clampFloat(cfg.GainDB, config.MinGainDB, config.MaxGainDB)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return err
	}
	st.Gain = cfg
	s.mirror(ch)
	s.generation.Add(1)
	return nil
}

// StageConfig returns a copy of the full stage config of an output
// channel.
func (s *Store) StageConfig(ch OutputChannel) (dsp.ChannelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.stage(ch)
	if err != nil {
		return dsp.ChannelConfig{}, err
	}
	return *st, nil
}
