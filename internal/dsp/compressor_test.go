// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestCompressorDisabledIsIdentity(t *testing.T) {
	var c Compressor
	c.Configure(CompressorConfig{ThresholdDB: -20, Ratio: 4}, testSampleRate)

	for _, x := range []float64{0, 1, -0.5} {
		if y := c.ProcessSample(x); y != x {
			t.Errorf("disabled compressor changed %v to %v", x, y)
		}
	}
}

func TestCompressorBelowThresholdNoReduction(t *testing.T) {
	var c Compressor
	c.Configure(CompressorConfig{
		Enabled:     true,
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   100,
		Detection:   DetectPeak,
	}, testSampleRate)

	// -40 dB DC sits well under the threshold.
	x := 0.01
	var y float64
	for i := 0; i < 48000; i++ {
		y = c.ProcessSample(x)
	}
	if math.Abs(y-x) > 1e-6 {
		t.Errorf("output below threshold = %v, want %v", y, x)
	}
	if gr := c.GainReductionDB(); gr > 0.01 {
		t.Errorf("gain reduction below threshold = %v dB, want 0", gr)
	}
}

func TestCompressorSteadyStateRatio(t *testing.T) {
	tests := []struct {
		name        string
		ratio       float64
		wantLevelDB float64 // threshold + excess/ratio for 0 dB input
	}{
		{"4:1", 4, -15},
		{"2:1", 2, -10},
		{"20:1", 20, -19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Compressor
			c.Configure(CompressorConfig{
				Enabled:     true,
				ThresholdDB: -20,
				Ratio:       tt.ratio,
				AttackMs:    1,
				ReleaseMs:   100,
				Detection:   DetectPeak,
			}, testSampleRate)

			// 0 dB DC, run long enough for the gain smoothing to settle.
			var y float64
			for i := 0; i < 200000; i++ {
				y = c.ProcessSample(1.0)
			}
			gotDB := LinearToDb(math.Abs(y))
			if math.Abs(gotDB-tt.wantLevelDB) > 0.5 {
				t.Errorf("steady-state output = %.2f dB, want %.2f dB",
					gotDB, tt.wantLevelDB)
			}
		})
	}
}

func TestCompressorMakeupGain(t *testing.T) {
	var c Compressor
	c.Configure(CompressorConfig{
		Enabled:     true,
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   100,
		MakeupDB:    6,
		Detection:   DetectPeak,
	}, testSampleRate)

	var y float64
	for i := 0; i < 200000; i++ {
		y = c.ProcessSample(1.0)
	}
	// -15 dB reduced level plus 6 dB makeup.
	gotDB := LinearToDb(math.Abs(y))
	if math.Abs(gotDB-(-9)) > 0.5 {
		t.Errorf("output with makeup = %.2f dB, want -9 dB", gotDB)
	}
}

func TestCompressorSoftKneeBelowHalfKnee(t *testing.T) {
	// Inside the lower half of the knee there is already some gentle
	// reduction; below it there is none.
	var c Compressor
	c.Configure(CompressorConfig{
		Enabled:     true,
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   100,
		SoftKnee:    true,
		KneeDB:      12,
		Detection:   DetectPeak,
	}, testSampleRate)

	// -22 dB input: 2 dB under the threshold but inside the 12 dB knee.
	x := DbToLinear(-22)
	for i := 0; i < 200000; i++ {
		c.ProcessSample(x)
	}
	gr := c.GainReductionDB()
	if gr <= 0 {
		t.Errorf("gain reduction inside knee = %v dB, want > 0", gr)
	}
	// Hard-knee reduction at -22 dB input would be zero; soft knee must
	// stay gentler than the full-ratio reduction at threshold.
	if gr > 2 {
		t.Errorf("gain reduction inside knee = %v dB, want small", gr)
	}
}

func TestCompressorReleaseRecovers(t *testing.T) {
	var c Compressor
	c.Configure(CompressorConfig{
		Enabled:     true,
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   50,
		Detection:   DetectPeak,
	}, testSampleRate)

	for i := 0; i < 48000; i++ {
		c.ProcessSample(1.0)
	}
	loud := c.GainReductionDB()
	for i := 0; i < 480000; i++ {
		c.ProcessSample(0.001)
	}
	quiet := c.GainReductionDB()
	if quiet >= loud {
		t.Errorf("gain reduction did not release: loud=%v quiet=%v", loud, quiet)
	}
	if quiet > 0.5 {
		t.Errorf("gain reduction after release = %v dB, want ~0", quiet)
	}
}

func TestCompressorReset(t *testing.T) {
	var c Compressor
	c.Configure(CompressorConfig{
		Enabled:     true,
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   100,
		Detection:   DetectRMS,
	}, testSampleRate)

	for i := 0; i < 48000; i++ {
		c.ProcessSample(1.0)
	}
	c.Reset()
	if gr := c.GainReductionDB(); gr != 0 {
		t.Errorf("gain reduction after reset = %v, want 0", gr)
	}
}

func BenchmarkCompressorProcessSample(b *testing.B) {
	var c Compressor
	c.Configure(CompressorConfig{
		Enabled:     true,
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    5,
		ReleaseMs:   100,
		SoftKnee:    true,
		KneeDB:      6,
		Detection:   DetectRMS,
	}, testSampleRate)

	b.ReportAllocs()
	b.ResetTimer()
	var y float64
	for i := 0; i < b.N; i++ {
		y = c.ProcessSample(0.5)
	}
	_ = y
}
