// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"

	"crossover/internal/config"
	"crossover/internal/dsp"
)

// Meter tracks a smoothed RMS level per output channel. Update runs in
// the processing context once per frame; Levels may be read from any
// goroutine and tolerates one frame of staleness.
//
// The published values live in atomic uint64 slots holding float64
// bits, so readers never see a torn level and the hot path never takes
// a lock.
type Meter struct {
	smoothed [config.OutputChannels]atomic.Uint64
}

// NewMeter creates a meter with all levels at silence.
func NewMeter() *Meter {
	return &Meter{}
}

// Update computes the windowed RMS over the most recent samples of
// each output channel and folds it into the smoothed level:
// s' = decay*s + (1-decay)*rms.
func (m *Meter) Update(f *Frame) {
	window := config.MeterWindow
	if window > f.Size() {
		window = f.Size()
	}

	for ch := range f.Outputs {
		buf := f.Outputs[ch]
		var sum float64
		for _, x := range buf[len(buf)-window:] {
			sum += x * x
		}
		rms := math.Sqrt(sum / float64(window))

		old := math.Float64frombits(m.smoothed[ch].Load())
		s := config.MeterDecay*old + (1-config.MeterDecay)*rms
		m.smoothed[ch].Store(math.Float64bits(s))
	}
}

// Levels returns the current smoothed linear RMS level of every output
// channel.
func (m *Meter) Levels() [config.OutputChannels]float64 {
	var out [config.OutputChannels]float64
	for ch := range out {
		out[ch] = math.Float64frombits(m.smoothed[ch].Load())
	}
	return out
}

// LevelsDB returns the current levels in dBFS, floored at silence.
func (m *Meter) LevelsDB() [config.OutputChannels]float64 {
	levels := m.Levels()
	for ch := range levels {
		levels[ch] = dsp.LinearToDb(levels[ch])
	}
	return levels
}

// Reset drops all levels to silence.
func (m *Meter) Reset() {
	for ch := range m.smoothed {
		m.smoothed[ch].Store(0)
	}
}
