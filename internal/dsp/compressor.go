// SPDX-License-Identifier: MIT
package dsp

import "math"

// Detection selects the level detector feeding the compressor.
type Detection uint8

const (
	DetectRMS  Detection = iota // Windowed RMS: slower, more musical
	DetectPeak                  // Instantaneous peak: faster, more protective
)

// CompressorConfig describes the dynamics stage of one output channel.
type CompressorConfig struct {
	Enabled     bool      `yaml:"enabled"`
	ThresholdDB float64   `yaml:"threshold_db"` // -60..0
	Ratio       float64   `yaml:"ratio"`        // 1..20
	AttackMs    float64   `yaml:"attack_ms"`    // 0.1..100
	ReleaseMs   float64   `yaml:"release_ms"`   // 10..1000
	MakeupDB    float64   `yaml:"makeup_db"`    // 0..24
	SoftKnee    bool      `yaml:"soft_knee"`
	KneeDB      float64   `yaml:"knee_db"` // 0..24, soft knee width
	Detection   Detection `yaml:"detection"`
}

const (
	compSilenceDB     = -120.0 // Envelope initial value and level floor
	compRMSWindow     = 32
	compGainSmoothing = 0.9995 // Per-sample smoothing of the computed gain
)

// Compressor tracks a dB-domain envelope of the signal level and
// applies gain reduction above the threshold following the configured
// ratio, with exponential attack/release and a fixed makeup gain.
type Compressor struct {
	cfg CompressorConfig

	attackCoef  float64
	releaseCoef float64

	envelopeDB     float64
	smoothedGainDB float64
	initialized    bool

	// RMS detector state: circular window of squared samples with a
	// running sum.
	rmsWindow [compRMSWindow]float64
	rmsSum    float64
	rmsIndex  int
}

// Configure applies the config and recomputes the attack/release
// coefficients for the sample rate.
func (c *Compressor) Configure(cfg CompressorConfig, sampleRate float64) {
	c.cfg = cfg
	if !c.initialized {
		c.envelopeDB = compSilenceDB
		c.initialized = true
	}
	c.attackCoef = envelopeCoef(cfg.AttackMs, sampleRate)
	c.releaseCoef = envelopeCoef(cfg.ReleaseMs, sampleRate)
}

// envelopeCoef converts a time constant in milliseconds to a one-pole
// smoothing coefficient: exp(-1 / (sampleRate * t)).
func envelopeCoef(ms, sampleRate float64) float64 {
	if ms <= 0.1 {
		return 0 // effectively instantaneous
	}
	return math.Exp(-1 / (sampleRate * ms / 1000))
}

// ProcessSample compresses one sample.
func (c *Compressor) ProcessSample(x float64) float64 {
	if !c.cfg.Enabled {
		return x
	}

	var level float64
	if c.cfg.Detection == DetectPeak {
		level = math.Abs(x)
	} else {
		level = c.detectRMS(x)
	}

	levelDB := compSilenceDB
	if level > 0 {
		levelDB = 20 * math.Log10(level)
	}

	// dB-domain envelope with separate attack/release smoothing.
	coef := c.releaseCoef
	if levelDB > c.envelopeDB {
		coef = c.attackCoef
	}
	c.envelopeDB = coef*c.envelopeDB + (1-coef)*levelDB

	gainDB := c.gainForEnvelope(c.envelopeDB) + c.cfg.MakeupDB

	// Smooth gain changes to avoid zipper artifacts.
	c.smoothedGainDB = c.smoothedGainDB*compGainSmoothing + gainDB*(1-compGainSmoothing)

	return x * DbToLinear(c.smoothedGainDB)
}

// gainForEnvelope computes the static gain curve in dB for an envelope
// level: zero below threshold, excess*(1/ratio - 1) above it, with an
// optional quadratic soft-knee transition.
func (c *Compressor) gainForEnvelope(envDB float64) float64 {
	thr := c.cfg.ThresholdDB
	ratio := c.cfg.Ratio
	if ratio < 1 {
		ratio = 1
	}

	if c.cfg.SoftKnee && c.cfg.KneeDB > 0 {
		knee := c.cfg.KneeDB
		if 2*(envDB-thr) < -knee {
			return 0
		}
		if 2*(envDB-thr) <= knee {
			d := envDB - thr + knee/2
			return (1/ratio - 1) * d * d / (2 * knee)
		}
		return (1/ratio - 1) * (envDB - thr)
	}

	if envDB <= thr {
		return 0
	}
	excess := envDB - thr
	return -(excess - excess/ratio)
}

func (c *Compressor) detectRMS(x float64) float64 {
	sq := x * x
	c.rmsSum += sq - c.rmsWindow[c.rmsIndex]
	c.rmsWindow[c.rmsIndex] = sq
	c.rmsIndex = (c.rmsIndex + 1) % compRMSWindow
	if c.rmsSum < 0 {
		c.rmsSum = 0 // guard against accumulated rounding
	}
	return math.Sqrt(c.rmsSum / compRMSWindow)
}

// GainReductionDB reports the current gain reduction for metering,
// positive values meaning reduction.
func (c *Compressor) GainReductionDB() float64 {
	return -(c.smoothedGainDB - c.cfg.MakeupDB)
}

// Reset clears the envelope, gain smoothing and RMS detector state.
func (c *Compressor) Reset() {
	c.envelopeDB = compSilenceDB
	c.smoothedGainDB = 0
	c.rmsWindow = [compRMSWindow]float64{}
	c.rmsSum = 0
	c.rmsIndex = 0
}
