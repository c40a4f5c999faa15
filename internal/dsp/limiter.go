// SPDX-License-Identifier: MIT
package dsp

import "math"

// LimiterConfig describes the peak limiter of one output channel.
// The limiter is the last line of defense against clipping: gain is
// pulled down instantaneously when a peak would exceed the threshold
// and recovers with a single release time constant.
type LimiterConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ThresholdDB float64 `yaml:"threshold_db"` // -20..0, output ceiling
	ReleaseMs   float64 `yaml:"release_ms"`   // 10..500
}

// Limiter applies an infinite-ratio gain clamp above the threshold.
// Attack is instantaneous by construction, so the post-stage magnitude
// never exceeds the configured ceiling.
type Limiter struct {
	cfg         LimiterConfig
	threshold   float64 // linear ceiling
	releaseCoef float64
	gain        float64 // current gain, (0, 1]
}

// Configure applies the config and recomputes the release coefficient
// for the sample rate.
func (l *Limiter) Configure(cfg LimiterConfig, sampleRate float64) {
	l.cfg = cfg
	l.threshold = DbToLinear(cfg.ThresholdDB)
	l.releaseCoef = envelopeCoef(cfg.ReleaseMs, sampleRate)
	if l.gain == 0 {
		l.gain = 1
	}
}

// ProcessSample limits one sample. Disabled is an exact identity.
func (l *Limiter) ProcessSample(x float64) float64 {
	if !l.cfg.Enabled {
		return x
	}

	// Recover toward unity gain, then clamp so this sample cannot
	// exceed the ceiling.
	g := 1 + l.releaseCoef*(l.gain-1)

	peak := math.Abs(x)
	if peak*g > l.threshold && peak > 0 {
		g = l.threshold / peak
	}
	l.gain = g

	return x * g
}

// GainReductionDB reports the current gain reduction for metering.
func (l *Limiter) GainReductionDB() float64 {
	if l.gain <= 0 || l.gain >= 1 {
		return 0
	}
	return -LinearToDb(l.gain)
}

// Reset restores unity gain.
func (l *Limiter) Reset() {
	l.gain = 1
}
