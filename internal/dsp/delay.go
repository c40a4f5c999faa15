// SPDX-License-Identifier: MIT
package dsp

import (
	"math"

	"crossover/pkg/bitint"
)

// DelayConfig describes the time/phase alignment stage of one output
// channel.
type DelayConfig struct {
	Enabled bool    `yaml:"enabled"`
	TimeMs  float64 `yaml:"time_ms"` // 0..max delay budget
	Invert  bool    `yaml:"invert"`  // 180-degree phase flip
}

// Delay is a circular buffer delay line with an optional polarity
// inversion. The buffer is a power-of-2 length so that wrapping is a
// bit mask.
type Delay struct {
	cfg DelayConfig

	buffer       []float64
	mask         int
	writeIndex   int
	delaySamples int
	maxSamples   int
}

// NewDelay allocates a delay line able to hold maxDelaySamples.
func NewDelay(maxDelaySamples int) *Delay {
	size := bitint.NextPowerOfTwo(maxDelaySamples + 1)
	return &Delay{
		buffer:     make([]float64, size),
		mask:       bitint.Mask(size),
		maxSamples: maxDelaySamples,
	}
}

// Configure applies the config, converting the delay time to whole
// samples clamped to the buffer budget.
func (d *Delay) Configure(cfg DelayConfig, sampleRate float64) {
	d.cfg = cfg
	samples := int(math.Round(cfg.TimeMs * sampleRate / 1000))
	if samples < 0 {
		samples = 0
	}
	if samples > d.maxSamples {
		samples = d.maxSamples
	}
	d.delaySamples = samples
}

// ProcessSample delays one sample. Disabled is an exact identity and
// leaves the line contents untouched.
func (d *Delay) ProcessSample(x float64) float64 {
	if !d.cfg.Enabled {
		return x
	}

	d.buffer[d.writeIndex] = x
	out := d.buffer[(d.writeIndex-d.delaySamples)&d.mask]
	d.writeIndex = (d.writeIndex + 1) & d.mask

	if d.cfg.Invert {
		return -out
	}
	return out
}

// DelaySamples returns the currently applied delay in whole samples.
func (d *Delay) DelaySamples() int {
	return d.delaySamples
}

// Reset clears the line contents.
func (d *Delay) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writeIndex = 0
}
