// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"crossover/pkg/utils"
)

func rms(buf []float64) float64 {
	var sum float64
	for _, x := range buf {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func TestSlopeOrder(t *testing.T) {
	tests := []struct {
		slope Slope
		order int
	}{
		{Slope12, 2},
		{Slope24, 4},
		{Slope48, 8},
	}
	for _, tt := range tests {
		if got := tt.slope.Order(); got != tt.order {
			t.Errorf("%v.Order() = %d, want %d", tt.slope, got, tt.order)
		}
	}
}

func TestCrossoverDisabledIsIdentity(t *testing.T) {
	var c Crossover
	c.Configure(CrossoverConfig{
		Enabled:      false,
		Alignment:    LinkwitzRiley,
		Slope:        Slope24,
		HighPassFreq: 80,
		LowPassFreq:  2000,
	}, testSampleRate)

	for _, x := range []float64{0, 1, -0.5, 0.25} {
		if y := c.ProcessSample(x); y != x {
			t.Errorf("disabled crossover changed %v to %v", x, y)
		}
	}
}

func TestCrossoverExtremeCornersBypassLegs(t *testing.T) {
	// HP at 20 Hz and LP at 20 kHz are the "off" positions; with both
	// off the configured crossover still has to pass samples untouched.
	var c Crossover
	c.Configure(CrossoverConfig{
		Enabled:      true,
		Alignment:    LinkwitzRiley,
		Slope:        Slope24,
		HighPassFreq: 20,
		LowPassFreq:  20000,
	}, testSampleRate)

	for _, x := range []float64{1, -1, 0.5} {
		if y := c.ProcessSample(x); y != x {
			t.Errorf("crossover with both legs off changed %v to %v", x, y)
		}
	}
}

func TestCrossoverBandPassResponse(t *testing.T) {
	tests := []struct {
		name      string
		alignment FilterAlignment
		slope     Slope
	}{
		{"LR 24dB", LinkwitzRiley, Slope24},
		{"LR 12dB", LinkwitzRiley, Slope12},
		{"LR 48dB", LinkwitzRiley, Slope48},
		{"Butterworth 24dB", Butterworth, Slope24},
		{"Bessel 24dB", Bessel, Slope24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Crossover
			c.Configure(CrossoverConfig{
				Enabled:      true,
				Alignment:    tt.alignment,
				Slope:        tt.slope,
				HighPassFreq: 80,
				LowPassFreq:  8000,
			}, testSampleRate)

			process := func(freq float64) float64 {
				c.Reset()
				in := utils.GenerateSineWave(9600, testSampleRate, freq, 1.0)
				out := make([]float64, len(in))
				for i, x := range in {
					out[i] = c.ProcessSample(x)
				}
				// Skip the transient at the start.
				return rms(out[4800:])
			}

			inRMS := 1.0 / math.Sqrt2
			if got := process(1000); math.Abs(got-inRMS)/inRMS > 0.1 {
				t.Errorf("passband RMS at 1 kHz = %v, want ~%v", got, inRMS)
			}
			if got := process(20); got > 0.2*inRMS {
				t.Errorf("stopband RMS at 20 Hz = %v, want well below passband", got)
			}
		})
	}
}

func TestLinkwitzRileySumsFlat(t *testing.T) {
	// The defining L-R property: the lowpass and highpass legs at the
	// same corner sum to an allpass. Run the same signal through a
	// low-only and a high-only crossover and check unity sum.
	const corner = 1000.0

	var low, high Crossover
	low.Configure(CrossoverConfig{
		Enabled:      true,
		Alignment:    LinkwitzRiley,
		Slope:        Slope24,
		HighPassFreq: 20,
		LowPassFreq:  corner,
	}, testSampleRate)
	high.Configure(CrossoverConfig{
		Enabled:      true,
		Alignment:    LinkwitzRiley,
		Slope:        Slope24,
		HighPassFreq: corner,
		LowPassFreq:  20000,
	}, testSampleRate)

	for _, freq := range []float64{250, 1000, 4000} {
		low.Reset()
		high.Reset()
		in := utils.GenerateSineWave(9600, testSampleRate, freq, 1.0)
		sum := make([]float64, len(in))
		for i, x := range in {
			sum[i] = low.ProcessSample(x) + high.ProcessSample(x)
		}
		inRMS := 1.0 / math.Sqrt2
		if got := rms(sum[4800:]); math.Abs(got-inRMS)/inRMS > 0.05 {
			t.Errorf("summed RMS at %.0f Hz = %v, want ~%v", freq, got, inRMS)
		}
	}
}

func TestCrossoverReset(t *testing.T) {
	var c Crossover
	c.Configure(CrossoverConfig{
		Enabled:      true,
		Alignment:    Butterworth,
		Slope:        Slope24,
		HighPassFreq: 80,
		LowPassFreq:  8000,
	}, testSampleRate)

	first := make([]float64, 256)
	for i := range first {
		first[i] = c.ProcessSample(0.5)
	}
	c.Reset()
	for i := range first {
		if got := c.ProcessSample(0.5); got != first[i] {
			t.Fatalf("sample %d after reset = %v, want %v", i, got, first[i])
		}
	}
}

func BenchmarkCrossoverProcessSample(b *testing.B) {
	var c Crossover
	c.Configure(CrossoverConfig{
		Enabled:      true,
		Alignment:    LinkwitzRiley,
		Slope:        Slope48,
		HighPassFreq: 80,
		LowPassFreq:  8000,
	}, testSampleRate)

	b.ReportAllocs()
	b.ResetTimer()
	var y float64
	for i := 0; i < b.N; i++ {
		y = c.ProcessSample(0.5)
	}
	_ = y
}
