// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"crossover/pkg/utils"
)

const (
	testFFTSize    = 1024
	testSampleRate = 48000.0
)

func TestNewAnalyzerValidation(t *testing.T) {
	if _, err := NewAnalyzer(1000, testSampleRate, "hann", nil); err == nil {
		t.Error("non-power-of-two FFT size accepted")
	}
	if _, err := NewAnalyzer(testFFTSize, testSampleRate, "bartlett-reinvented", nil); err == nil {
		t.Error("unknown window accepted")
	}
}

func TestAnalyzerFindsSineBin(t *testing.T) {
	// A sine exactly on a bin center with a rectangular window puts
	// all its energy in that bin; the 2/N scaling recovers its
	// amplitude.
	const bin = 64
	freq := bin * testSampleRate / testFFTSize

	mock := &utils.MockTransport{}
	a, err := NewAnalyzer(testFFTSize, testSampleRate, "rectangular", mock)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	sine := utils.GenerateSineWave(testFFTSize, testSampleRate, freq, 0.5)
	// Feed in engine-sized chunks to exercise accumulation.
	for off := 0; off < len(sine); off += 64 {
		a.ProcessFrame(sine[off : off+64])
	}

	mags := make([]float64, a.Bins())
	if err := a.GetMagnitudesInto(mags); err != nil {
		t.Fatalf("GetMagnitudesInto: %v", err)
	}

	if math.Abs(mags[bin]-0.5) > 0.01 {
		t.Errorf("magnitude at signal bin = %v, want ~0.5", mags[bin])
	}
	for i, m := range mags {
		if i >= bin-1 && i <= bin+1 {
			continue
		}
		if m > 0.01 {
			t.Fatalf("leakage at bin %d = %v", i, m)
		}
	}

	update, ok := mock.Last().(SpectrumUpdate)
	if !ok {
		t.Fatalf("payload type %T, want SpectrumUpdate", mock.Last())
	}
	if len(update.Magnitudes) != a.Bins() {
		t.Errorf("published %d bins, want %d", len(update.Magnitudes), a.Bins())
	}
	wantBinHz := testSampleRate / testFFTSize
	if math.Abs(update.BinHz-wantBinHz) > 1e-9 {
		t.Errorf("bin width = %v, want %v", update.BinHz, wantBinHz)
	}
}

func TestAnalyzerAccumulatesAcrossFrames(t *testing.T) {
	mock := &utils.MockTransport{}
	a, err := NewAnalyzer(256, testSampleRate, "hann", mock)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	frame := utils.GenerateDC(64, 0.25)
	for i := 0; i < 3; i++ {
		a.ProcessFrame(frame)
	}
	if mock.Last() != nil {
		t.Fatal("published before a full block accumulated")
	}
	a.ProcessFrame(frame)
	if mock.Last() == nil {
		t.Fatal("no publication after a full block")
	}
}

func TestAnalyzerFrequencyForBin(t *testing.T) {
	a, err := NewAnalyzer(testFFTSize, testSampleRate, "hann", nil)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	if got := a.FrequencyForBin(0); got != 0 {
		t.Errorf("bin 0 = %v Hz, want 0", got)
	}
	if got := a.FrequencyForBin(a.Bins() - 1); math.Abs(got-testSampleRate/2) > 1e-6 {
		t.Errorf("last bin = %v Hz, want Nyquist", got)
	}
	if got := a.FrequencyForBin(-1); got != 0 {
		t.Errorf("invalid bin = %v, want 0", got)
	}
	if got := a.FrequencyForBin(a.Bins()); got != 0 {
		t.Errorf("out-of-range bin = %v, want 0", got)
	}
}

func BenchmarkAnalyzerBlock(b *testing.B) {
	a, err := NewAnalyzer(testFFTSize, testSampleRate, "hann", nil)
	if err != nil {
		b.Fatalf("NewAnalyzer: %v", err)
	}
	sine := utils.GenerateSineWave(testFFTSize, testSampleRate, 1000, 0.5)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.ProcessFrame(sine)
	}
}
