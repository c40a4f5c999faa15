// SPDX-License-Identifier: MIT
package dsp

// BandType selects the filter shape of one parametric EQ band.
type BandType uint8

const (
	Bell BandType = iota
	LowShelf
	HighShelf
	LowPass
	HighPass
	Notch
	AllPass
	BandPass
)

// String returns the display name of the band type.
func (t BandType) String() string {
	switch t {
	case Bell:
		return "BELL"
	case LowShelf:
		return "LSHELF"
	case HighShelf:
		return "HSHELF"
	case LowPass:
		return "LPF"
	case HighPass:
		return "HPF"
	case Notch:
		return "NOTCH"
	case AllPass:
		return "APF"
	case BandPass:
		return "BPF"
	default:
		return "???"
	}
}

// EQBandConfig describes one parametric band.
type EQBandConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Type      BandType `yaml:"type"`
	Frequency float64  `yaml:"frequency"`
	GainDB    float64  `yaml:"gain_db"`
	Q         float64  `yaml:"q"`
}

// MaxEQBands is the number of parametric bands per output channel.
const MaxEQBands = 5

// EQConfig describes the parametric equalizer of one output channel.
type EQConfig struct {
	Enabled bool                     `yaml:"enabled"`
	Bands   [MaxEQBands]EQBandConfig `yaml:"bands"`
}

// EQ runs the enabled bands in series, each a single biquad section.
type EQ struct {
	cfg      EQConfig
	sections [MaxEQBands]Section
}

// Configure redesigns all enabled bands for the sample rate.
func (e *EQ) Configure(cfg EQConfig, sampleRate float64) {
	e.cfg = cfg
	for i := range cfg.Bands {
		band := cfg.Bands[i]
		if !band.Enabled {
			e.sections[i].Coefficients = Identity()
			continue
		}
		e.sections[i].Coefficients = bandCoefficients(band, sampleRate)
	}
}

func bandCoefficients(band EQBandConfig, sampleRate float64) Coefficients {
	switch band.Type {
	case LowShelf:
		return LowShelfCoefficients(band.Frequency, band.GainDB, band.Q, sampleRate)
	case HighShelf:
		return HighShelfCoefficients(band.Frequency, band.GainDB, band.Q, sampleRate)
	case LowPass:
		return LowPassCoefficients(band.Frequency, band.Q, sampleRate)
	case HighPass:
		return HighPassCoefficients(band.Frequency, band.Q, sampleRate)
	case Notch:
		return NotchCoefficients(band.Frequency, band.Q, sampleRate)
	case AllPass:
		return AllPassCoefficients(band.Frequency, band.Q, sampleRate)
	case BandPass:
		return BandPassCoefficients(band.Frequency, band.Q, sampleRate)
	default:
		return PeakingCoefficients(band.Frequency, band.GainDB, band.Q, sampleRate)
	}
}

// ProcessSample runs one sample through the enabled bands in order.
func (e *EQ) ProcessSample(x float64) float64 {
	if !e.cfg.Enabled {
		return x
	}
	for i := range e.sections {
		if e.cfg.Bands[i].Enabled {
			x = e.sections[i].ProcessSample(x)
		}
	}
	return x
}

// Reset clears all band filter histories.
func (e *EQ) Reset() {
	for i := range e.sections {
		e.sections[i].Reset()
	}
}
