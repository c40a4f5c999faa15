// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"crossover/pkg/utils"
)

func TestLimiterDisabledIsIdentity(t *testing.T) {
	var l Limiter
	l.Configure(LimiterConfig{ThresholdDB: -6}, testSampleRate)

	for _, x := range []float64{0, 2, -2} {
		if y := l.ProcessSample(x); y != x {
			t.Errorf("disabled limiter changed %v to %v", x, y)
		}
	}
}

func TestLimiterNeverExceedsCeiling(t *testing.T) {
	tests := []struct {
		name        string
		thresholdDB float64
	}{
		{"ceiling -6dB", -6},
		{"ceiling -0.1dB", -0.1},
		{"ceiling -20dB", -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Limiter
			l.Configure(LimiterConfig{
				Enabled:     true,
				ThresholdDB: tt.thresholdDB,
				ReleaseMs:   50,
			}, testSampleRate)

			ceiling := DbToLinear(tt.thresholdDB)
			in := utils.GenerateSineWave(9600, testSampleRate, 1000, 2.0)
			for i, x := range in {
				y := l.ProcessSample(x)
				if math.Abs(y) > ceiling+1e-12 {
					t.Fatalf("sample %d: |%v| exceeds ceiling %v", i, y, ceiling)
				}
			}
			if gr := l.GainReductionDB(); gr <= 0 {
				t.Errorf("gain reduction while limiting = %v dB, want > 0", gr)
			}
		})
	}
}

func TestLimiterBelowCeilingIsTransparent(t *testing.T) {
	var l Limiter
	l.Configure(LimiterConfig{
		Enabled:     true,
		ThresholdDB: -6,
		ReleaseMs:   50,
	}, testSampleRate)

	x := 0.1 // -20 dB, far below the -6 dB ceiling
	for i := 0; i < 1000; i++ {
		if y := l.ProcessSample(x); math.Abs(y-x) > 1e-12 {
			t.Fatalf("sample %d: transparent input changed %v to %v", i, x, y)
		}
	}
}

func TestLimiterReleasesTowardUnity(t *testing.T) {
	var l Limiter
	l.Configure(LimiterConfig{
		Enabled:     true,
		ThresholdDB: -6,
		ReleaseMs:   50,
	}, testSampleRate)

	// Slam the limiter, then feed quiet material and watch gain recover.
	l.ProcessSample(2.0)
	held := l.GainReductionDB()
	if held <= 0 {
		t.Fatalf("gain reduction after peak = %v dB, want > 0", held)
	}

	var y float64
	x := 0.01
	for i := 0; i < 48000; i++ {
		y = l.ProcessSample(x)
	}
	if gr := l.GainReductionDB(); gr >= held {
		t.Errorf("gain reduction did not release: %v -> %v", held, gr)
	}
	if math.Abs(y-x) > 1e-6 {
		t.Errorf("output after release = %v, want ~%v", y, x)
	}
}

func TestLimiterReset(t *testing.T) {
	var l Limiter
	l.Configure(LimiterConfig{
		Enabled:     true,
		ThresholdDB: -6,
		ReleaseMs:   50,
	}, testSampleRate)

	l.ProcessSample(2.0)
	l.Reset()
	if gr := l.GainReductionDB(); gr != 0 {
		t.Errorf("gain reduction after reset = %v, want 0", gr)
	}
	x := 0.1
	if y := l.ProcessSample(x); math.Abs(y-x) > 1e-12 {
		t.Errorf("first sample after reset = %v, want %v", y, x)
	}
}

func BenchmarkLimiterProcessSample(b *testing.B) {
	var l Limiter
	l.Configure(LimiterConfig{
		Enabled:     true,
		ThresholdDB: -1,
		ReleaseMs:   50,
	}, testSampleRate)

	b.ReportAllocs()
	b.ResetTimer()
	var y float64
	for i := 0; i < b.N; i++ {
		y = l.ProcessSample(0.9)
	}
	_ = y
}
