// SPDX-License-Identifier: MIT
package dsp

// FilterAlignment selects the crossover filter family.
type FilterAlignment uint8

const (
	Butterworth FilterAlignment = iota
	LinkwitzRiley
	Bessel
)

// String returns the short display name used by UI collaborators.
func (a FilterAlignment) String() string {
	switch a {
	case Butterworth:
		return "BUT"
	case LinkwitzRiley:
		return "L-R"
	case Bessel:
		return "BES"
	default:
		return "???"
	}
}

// Slope selects the crossover filter steepness in dB/octave.
type Slope uint8

const (
	Slope12 Slope = iota // 2nd order
	Slope24              // 4th order
	Slope48              // 8th order
)

// String returns the display name of the slope.
func (s Slope) String() string {
	switch s {
	case Slope12:
		return "12dB"
	case Slope24:
		return "24dB"
	case Slope48:
		return "48dB"
	default:
		return "???"
	}
}

// Order returns the filter order for the slope.
func (s Slope) Order() int {
	switch s {
	case Slope12:
		return 2
	case Slope24:
		return 4
	case Slope48:
		return 8
	default:
		return 4
	}
}

// CrossoverConfig describes the band edges of one output channel.
// A HighPassFreq at or below the audible minimum disables the highpass
// leg; a LowPassFreq at or above the audible maximum disables the
// lowpass leg.
type CrossoverConfig struct {
	Enabled      bool            `yaml:"enabled"`
	Alignment    FilterAlignment `yaml:"alignment"`
	Slope        Slope           `yaml:"slope"`
	HighPassFreq float64         `yaml:"highpass_freq"`
	LowPassFreq  float64         `yaml:"lowpass_freq"`
}

const (
	minAudibleFreq = 20.0
	maxAudibleFreq = 20000.0
)

// Per-section Q values for cascaded designs. Butterworth Qs place the
// poles on the unit circle; Linkwitz-Riley is a squared Butterworth of
// half the order; Bessel Qs give maximally flat group delay.
var (
	butterworthQ2 = []float64{0.70710678}
	butterworthQ4 = []float64{0.54119610, 1.30656296}
	butterworthQ8 = []float64{0.50979558, 0.60134489, 0.89997622, 2.56291544}

	besselQ2 = []float64{0.57735027}
	besselQ4 = []float64{0.52193602, 0.80553656}
)

// sectionQs returns the Q of each cascaded 2nd-order section for the
// alignment and slope, plus whether the highpass leg needs a polarity
// inversion (Linkwitz-Riley of order 2 mod 4) to keep LP+HP summing
// flat across paired channels.
func sectionQs(alignment FilterAlignment, slope Slope) (qs []float64, invertHP bool) {
	switch alignment {
	case LinkwitzRiley:
		switch slope {
		case Slope12:
			return []float64{0.5}, true
		case Slope48:
			return append(append([]float64{}, butterworthQ4...), butterworthQ4...), false
		default:
			return []float64{0.70710678, 0.70710678}, false
		}
	case Bessel:
		if slope == Slope12 {
			return besselQ2, false
		}
		return besselQ4, false
	default: // Butterworth
		switch slope {
		case Slope12:
			return butterworthQ2, false
		case Slope48:
			return butterworthQ8, false
		default:
			return butterworthQ4, false
		}
	}
}

// Crossover is the band-splitting stage of one output channel: a
// highpass cascade at the lower band edge followed by a lowpass cascade
// at the upper one.
type Crossover struct {
	cfg CrossoverConfig
	hp  []Section
	lp  []Section
}

// Configure redesigns both cascades for the given config and sample
// rate. Filter state is preserved so a small frequency nudge does not
// click; Reset clears it explicitly.
func (c *Crossover) Configure(cfg CrossoverConfig, sampleRate float64) {
	c.cfg = cfg
	qs, invertHP := sectionQs(cfg.Alignment, cfg.Slope)

	c.hp = resizeSections(c.hp, 0)
	if cfg.HighPassFreq > minAudibleFreq {
		c.hp = resizeSections(c.hp, len(qs))
		for i, q := range qs {
			c.hp[i].Coefficients = HighPassCoefficients(cfg.HighPassFreq, q, sampleRate)
			if invertHP {
				c.hp[i].B0 = -c.hp[i].B0
				c.hp[i].B1 = -c.hp[i].B1
				c.hp[i].B2 = -c.hp[i].B2
				invertHP = false // invert one section only
			}
		}
	}

	c.lp = resizeSections(c.lp, 0)
	if cfg.LowPassFreq < maxAudibleFreq {
		c.lp = resizeSections(c.lp, len(qs))
		for i, q := range qs {
			c.lp[i].Coefficients = LowPassCoefficients(cfg.LowPassFreq, q, sampleRate)
		}
	}
}

// ProcessSample filters one sample through both cascades. Disabled is
// an exact identity.
func (c *Crossover) ProcessSample(x float64) float64 {
	if !c.cfg.Enabled {
		return x
	}
	for i := range c.hp {
		x = c.hp[i].ProcessSample(x)
	}
	for i := range c.lp {
		x = c.lp[i].ProcessSample(x)
	}
	return x
}

// Reset clears all filter histories.
func (c *Crossover) Reset() {
	for i := range c.hp {
		c.hp[i].Reset()
	}
	for i := range c.lp {
		c.lp[i].Reset()
	}
}

// resizeSections grows or shrinks a section slice in place, reusing
// backing storage where possible so Configure does not allocate on the
// steady state.
func resizeSections(s []Section, n int) []Section {
	if cap(s) < n {
		grown := make([]Section, n)
		copy(grown, s)
		return grown
	}
	return s[:n]
}
