// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"

	"crossover/internal/config"
)

func fillInputs(f *Frame, in1, in2 float64) {
	for i := range f.Inputs[0] {
		f.Inputs[0][i] = in1
		f.Inputs[1][i] = in2
	}
}

func TestRouteSources(t *testing.T) {
	tests := []struct {
		name string
		r    OutputRouting
		want float64 // expected output for in1=0.8, in2=0.2
	}{
		{"silence", OutputRouting{Source: SourceSilence}, 0},
		{"input 1", OutputRouting{Source: SourceInput1}, 0.8},
		{"input 2", OutputRouting{Source: SourceInput2}, 0.2},
		{"mix full toward in1", OutputRouting{Source: SourceMix, MixRatio: 1}, 0.8},
		{"mix full toward in2", OutputRouting{Source: SourceMix, MixRatio: 0}, 0.2},
		{"mix halfway", OutputRouting{Source: SourceMix, MixRatio: 0.5}, 0.5},
		{"mix weighted", OutputRouting{Source: SourceMix, MixRatio: 0.25}, 0.25*0.8 + 0.75*0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(16)
			fillInputs(f, 0.8, 0.2)

			var cfg RoutingConfig
			for ch := range cfg.Outputs {
				cfg.Outputs[ch] = tt.r
			}
			Route(f, cfg)

			for ch := range f.Outputs {
				for i, got := range f.Outputs[ch] {
					if math.Abs(got-tt.want) > 1e-12 {
						t.Fatalf("out %d sample %d = %v, want %v", ch, i, got, tt.want)
					}
				}
			}
		})
	}
}

func TestRouteMonoSum(t *testing.T) {
	f := NewFrame(8)
	fillInputs(f, 0.8, 0.2)

	cfg := DefaultRouting()
	cfg.MonoSum = true
	Route(f, cfg)

	// Every non-silent output gets the average regardless of source.
	for ch := range f.Outputs {
		for i, got := range f.Outputs[ch] {
			if math.Abs(got-0.5) > 1e-12 {
				t.Fatalf("out %d sample %d = %v, want 0.5", ch, i, got)
			}
		}
	}
}

func TestRouteMonoSumKeepsSilence(t *testing.T) {
	f := NewFrame(8)
	fillInputs(f, 0.8, 0.2)

	cfg := DefaultRouting()
	cfg.MonoSum = true
	cfg.Outputs[3].Source = SourceSilence
	Route(f, cfg)

	for i, got := range f.Outputs[3] {
		if got != 0 {
			t.Fatalf("silent output sample %d = %v, want 0", i, got)
		}
	}
}

func TestDefaultRouting(t *testing.T) {
	cfg := DefaultRouting()
	if cfg.Outputs[0].Source != SourceInput1 || cfg.Outputs[1].Source != SourceInput2 {
		t.Error("tops are not fed from the discrete inputs")
	}
	for ch := 2; ch < config.OutputChannels; ch++ {
		if cfg.Outputs[ch].Source != SourceMix || cfg.Outputs[ch].MixRatio != 0.5 {
			t.Errorf("sub %d is not fed from the even mix", ch)
		}
	}
}

func BenchmarkRoute(b *testing.B) {
	f := NewFrame(64)
	fillInputs(f, 0.8, 0.2)
	cfg := DefaultRouting()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Route(f, cfg)
	}
}
