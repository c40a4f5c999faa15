// SPDX-License-Identifier: MIT
package dsp

// GainConfig describes the final trim stage of one output channel.
type GainConfig struct {
	Enabled bool    `yaml:"enabled"`
	GainDB  float64 `yaml:"gain_db"`
	Mute    bool    `yaml:"mute"`
}

// Gain applies the per-channel trim gain and mute, after all other
// stages.
type Gain struct {
	cfg    GainConfig
	linear float64
}

// Configure applies the config, caching the linear gain factor.
func (g *Gain) Configure(cfg GainConfig) {
	g.cfg = cfg
	g.linear = DbToLinear(cfg.GainDB)
}

// ProcessSample trims one sample. Disabled is an exact identity.
func (g *Gain) ProcessSample(x float64) float64 {
	if !g.cfg.Enabled {
		return x
	}
	if g.cfg.Mute {
		return 0
	}
	return x * g.linear
}

// Reset is a no-op; the stage holds no signal state.
func (g *Gain) Reset() {}
