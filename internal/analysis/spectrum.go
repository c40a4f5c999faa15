// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"crossover/internal/transport"
	"crossover/pkg/bitint"
)

// SpectrumUpdate is the telemetry payload carrying one spectrum of the
// tapped output channel.
type SpectrumUpdate struct {
	BinHz      float64   `json:"bin_hz"`
	Magnitudes []float64 `json:"magnitudes"`
}

// Analyzer computes the magnitude spectrum of one output channel from
// the processed frames the engine taps into it. Frames accumulate
// until a full FFT block is available; the block is windowed,
// transformed and published on the transport.
//
// ProcessFrame runs on the engine's processing goroutine with
// pre-allocated buffers only. Magnitude reads from other goroutines go
// through GetMagnitudesInto under the mutex.
type Analyzer struct {
	fftSize    int
	sampleRate float64
	transport  transport.Transport
	fft        *fourier.FFT

	accum    []float64
	accumLen int

	input  []float64 // windowed block handed to the FFT
	window []float64 // window coefficients
	coeffs []complex128

	mu        sync.Mutex
	magnitude []float64
	sendBuf   []float64
}

// windowCoefficients builds the coefficient vector for a named window
// by applying it to a vector of ones.
func windowCoefficients(name string, n int) ([]float64, error) {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	switch strings.ToLower(name) {
	case "", "rectangular":
		return w, nil
	case "hann":
		return window.Hann(w), nil
	case "hamming":
		return window.Hamming(w), nil
	case "blackman":
		return window.Blackman(w), nil
	case "flattop":
		return window.FlatTop(w), nil
	default:
		return nil, fmt.Errorf("unknown window function %q", name)
	}
}

// NewAnalyzer creates an analyzer for the given FFT size (a power of
// two), sample rate and window function.
func NewAnalyzer(fftSize int, sampleRate float64, windowName string, tr transport.Transport) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) || fftSize < 2 {
		return nil, fmt.Errorf("FFT size %d is not a power of two", fftSize)
	}
	win, err := windowCoefficients(windowName, fftSize)
	if err != nil {
		return nil, err
	}

	bins := fftSize/2 + 1
	return &Analyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		transport:  tr,
		fft:        fourier.NewFFT(fftSize),
		accum:      make([]float64, fftSize),
		input:      make([]float64, fftSize),
		window:     win,
		coeffs:     make([]complex128, bins),
		magnitude:  make([]float64, bins),
		sendBuf:    make([]float64, bins),
	}, nil
}

// Bins returns the number of magnitude bins (fftSize/2 + 1).
func (a *Analyzer) Bins() int {
	return len(a.magnitude)
}

// FrequencyForBin returns the center frequency of a magnitude bin.
func (a *Analyzer) FrequencyForBin(i int) float64 {
	if i < 0 || i >= len(a.magnitude) {
		return 0
	}
	return a.fft.Freq(i) * a.sampleRate
}

// ProcessFrame folds one processed frame into the accumulator and runs
// the FFT whenever a full block is ready. Larger-than-block frames
// contribute multiple blocks.
func (a *Analyzer) ProcessFrame(samples []float64) {
	for len(samples) > 0 {
		n := copy(a.accum[a.accumLen:], samples)
		a.accumLen += n
		samples = samples[n:]

		if a.accumLen == a.fftSize {
			a.analyzeBlock()
			a.accumLen = 0
		}
	}
}

func (a *Analyzer) analyzeBlock() {
	for i := range a.accum {
		a.input[i] = a.accum[i] * a.window[i]
	}
	a.fft.Coefficients(a.coeffs, a.input)

	scale := 2 / float64(a.fftSize)
	a.mu.Lock()
	for i, c := range a.coeffs {
		a.magnitude[i] = cmplx.Abs(c) * scale
	}
	copy(a.sendBuf, a.magnitude)
	a.mu.Unlock()

	if a.transport != nil {
		_ = a.transport.Send(SpectrumUpdate{
			BinHz:      a.sampleRate / float64(a.fftSize),
			Magnitudes: a.sendBuf,
		})
	}
}

// GetMagnitudesInto copies the most recent magnitude spectrum into
// dst, which must hold Bins() values.
func (a *Analyzer) GetMagnitudesInto(dst []float64) error {
	if len(dst) != len(a.magnitude) {
		return fmt.Errorf("destination holds %d bins, want %d", len(dst), len(a.magnitude))
	}
	a.mu.Lock()
	copy(dst, a.magnitude)
	a.mu.Unlock()
	return nil
}
