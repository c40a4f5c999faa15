// SPDX-License-Identifier: MIT
package dsp

// ChannelConfig aggregates the stage configurations of one output
// channel, in processing order.
type ChannelConfig struct {
	Crossover  CrossoverConfig  `yaml:"crossover"`
	EQ         EQConfig         `yaml:"eq"`
	Compressor CompressorConfig `yaml:"compressor"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	Delay      DelayConfig      `yaml:"delay"`
	Gain       GainConfig       `yaml:"gain"`
}

// DefaultChannelConfig returns the power-on stage configuration: all
// stages present but bypassed except the trim gain at 0 dB, matching a
// transparent pass-through.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Crossover: CrossoverConfig{
			Alignment:    LinkwitzRiley,
			Slope:        Slope24,
			HighPassFreq: 20,
			LowPassFreq:  20000,
		},
		EQ: EQConfig{},
		Compressor: CompressorConfig{
			ThresholdDB: -20,
			Ratio:       4,
			AttackMs:    20,
			ReleaseMs:   200,
			SoftKnee:    true,
			KneeDB:      6,
			Detection:   DetectRMS,
		},
		Limiter: LimiterConfig{
			ThresholdDB: -0.1,
			ReleaseMs:   50,
		},
		Delay: DelayConfig{},
		Gain:  GainConfig{Enabled: true},
	}
}

// channelChain holds the stage instances and persistent state of one
// output channel.
type channelChain struct {
	crossover  Crossover
	eq         EQ
	compressor Compressor
	limiter    Limiter
	delay      *Delay
	gain       Gain
}

// Chain runs the fixed-order stage pipeline for every output channel.
// All persistent stage state lives here; it is touched only from the
// processing context, inside a frame pass.
type Chain struct {
	sampleRate float64
	channels   []*channelChain
}

// NewChain creates a chain for the given channel count with every
// channel at the default (transparent) configuration.
func NewChain(channels int, sampleRate float64, maxDelaySamples int) *Chain {
	c := &Chain{
		sampleRate: sampleRate,
		channels:   make([]*channelChain, channels),
	}
	def := DefaultChannelConfig()
	for i := range c.channels {
		cc := &channelChain{delay: NewDelay(maxDelaySamples)}
		cc.configure(def, sampleRate)
		c.channels[i] = cc
	}
	return c
}

func (cc *channelChain) configure(cfg ChannelConfig, sampleRate float64) {
	cc.crossover.Configure(cfg.Crossover, sampleRate)
	cc.eq.Configure(cfg.EQ, sampleRate)
	cc.compressor.Configure(cfg.Compressor, sampleRate)
	cc.limiter.Configure(cfg.Limiter, sampleRate)
	cc.delay.Configure(cfg.Delay, sampleRate)
	cc.gain.Configure(cfg.Gain)
}

// Configure applies a full per-channel configuration snapshot. Called
// by the pipeline controller at a frame boundary, never mid-frame.
func (c *Chain) Configure(configs []ChannelConfig) {
	for i := range c.channels {
		if i < len(configs) {
			c.channels[i].configure(configs[i], c.sampleRate)
		}
	}
}

// Channels returns the number of configured output channels.
func (c *Chain) Channels() int {
	return len(c.channels)
}

// Process runs the samples of one output channel through the stage
// pipeline in order, in place. Stages with memory see the samples in
// strict time order.
func (c *Chain) Process(channel int, buf []float64) {
	if channel < 0 || channel >= len(c.channels) {
		return
	}
	cc := c.channels[channel]
	for i, x := range buf {
		x = cc.crossover.ProcessSample(x)
		x = cc.eq.ProcessSample(x)
		x = cc.compressor.ProcessSample(x)
		x = cc.limiter.ProcessSample(x)
		x = cc.delay.ProcessSample(x)
		buf[i] = cc.gain.ProcessSample(x)
	}
}

// GainReductionDB reports the combined compressor and limiter gain
// reduction of a channel, for metering.
func (c *Chain) GainReductionDB(channel int) float64 {
	if channel < 0 || channel >= len(c.channels) {
		return 0
	}
	cc := c.channels[channel]
	return cc.compressor.GainReductionDB() + cc.limiter.GainReductionDB()
}

// Reset clears every stage's persistent state on every channel:
// filter histories, envelope followers and delay line contents.
func (c *Chain) Reset() {
	for _, cc := range c.channels {
		cc.crossover.Reset()
		cc.eq.Reset()
		cc.compressor.Reset()
		cc.limiter.Reset()
		cc.delay.Reset()
		cc.gain.Reset()
	}
}
