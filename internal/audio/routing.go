// SPDX-License-Identifier: MIT
package audio

import (
	"crossover/internal/config"
)

// Source selects what feeds an output channel before its processing
// chain.
type Source uint8

const (
	SourceSilence Source = iota
	SourceInput1
	SourceInput2
	SourceMix // weighted blend of both inputs
)

// String returns the display name of the source.
func (s Source) String() string {
	switch s {
	case SourceSilence:
		return "NONE"
	case SourceInput1:
		return "IN1"
	case SourceInput2:
		return "IN2"
	case SourceMix:
		return "MIX"
	default:
		return "???"
	}
}

// OutputRouting describes the source of one output channel. For
// SourceMix the blend is MixRatio*in1 + (1-MixRatio)*in2.
type OutputRouting struct {
	Source   Source  `yaml:"source"`
	MixRatio float64 `yaml:"mix_ratio"` // 0..1, only meaningful for SourceMix
}

// RoutingConfig is the full routing matrix: one selector per output
// plus the global mono-sum switch, which folds both inputs to their
// average before any selection.
type RoutingConfig struct {
	Outputs [config.OutputChannels]OutputRouting `yaml:"outputs"`
	MonoSum bool                                 `yaml:"mono_sum"`
}

// DefaultRouting mirrors the factory setting of a 2x4 crossover:
// outputs 0/1 are the left/right tops, outputs 2/3 the subs fed from
// the mix of both inputs.
func DefaultRouting() RoutingConfig {
	return RoutingConfig{
		Outputs: [config.OutputChannels]OutputRouting{
			{Source: SourceInput1},
			{Source: SourceInput2},
			{Source: SourceMix, MixRatio: 0.5},
			{Source: SourceMix, MixRatio: 0.5},
		},
	}
}

// Route fills every output channel of the frame from the decoded
// inputs according to the matrix. Stateless; the config is a frame
// boundary snapshot and never changes mid-call.
func Route(f *Frame, cfg RoutingConfig) {
	in1, in2 := f.Inputs[0], f.Inputs[1]

	for ch := range f.Outputs {
		out := f.Outputs[ch]
		r := cfg.Outputs[ch]

		switch {
		case r.Source == SourceSilence:
			for i := range out {
				out[i] = 0
			}
		case cfg.MonoSum:
			for i := range out {
				out[i] = 0.5 * (in1[i] + in2[i])
			}
		case r.Source == SourceInput1:
			copy(out, in1)
		case r.Source == SourceInput2:
			copy(out, in2)
		default: // SourceMix
			m := r.MixRatio
			for i := range out {
				out[i] = m*in1[i] + (1-m)*in2[i]
			}
		}
	}
}
