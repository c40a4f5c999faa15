// SPDX-License-Identifier: MIT
package dsp

import "math"

// Coefficients holds the transfer function of a single second-order
// section. a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns coefficients for a unity pass-through section.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Section is a single biquad filter: coefficients plus two delay-line
// state words. Direct Form II Transposed.
type Section struct {
	Coefficients

	d0, d1 float64
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y
	return y
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// rbj computes the common intermediate terms of the RBJ cookbook
// designs for a corner frequency and Q at the given sample rate.
func rbj(freq, q, sampleRate float64) (cosw, alpha float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	return math.Cos(w0), math.Sin(w0) / (2 * q)
}

// LowPassCoefficients designs a 2nd-order lowpass at freq with the
// given Q.
func LowPassCoefficients(freq, q, sampleRate float64) Coefficients {
	cosw, alpha := rbj(freq, q, sampleRate)
	a0 := 1 + alpha
	return Coefficients{
		B0: (1 - cosw) / 2 / a0,
		B1: (1 - cosw) / a0,
		B2: (1 - cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// HighPassCoefficients designs a 2nd-order highpass at freq with the
// given Q.
func HighPassCoefficients(freq, q, sampleRate float64) Coefficients {
	cosw, alpha := rbj(freq, q, sampleRate)
	a0 := 1 + alpha
	return Coefficients{
		B0: (1 + cosw) / 2 / a0,
		B1: -(1 + cosw) / a0,
		B2: (1 + cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// PeakingCoefficients designs a peaking (bell) band with the given
// center frequency, gain in dB and Q.
func PeakingCoefficients(freq, gainDB, q, sampleRate float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	cosw, alpha := rbj(freq, q, sampleRate)
	a0 := 1 + alpha/a
	return Coefficients{
		B0: (1 + alpha*a) / a0,
		B1: -2 * cosw / a0,
		B2: (1 - alpha*a) / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha/a) / a0,
	}
}

// LowShelfCoefficients designs a low shelf with the given corner
// frequency, gain in dB and Q.
func LowShelfCoefficients(freq, gainDB, q, sampleRate float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	cosw, alpha := rbj(freq, q, sampleRate)
	sqrtA := math.Sqrt(a)
	a0 := (a + 1) + (a-1)*cosw + 2*sqrtA*alpha
	return Coefficients{
		B0: a * ((a + 1) - (a-1)*cosw + 2*sqrtA*alpha) / a0,
		B1: 2 * a * ((a - 1) - (a+1)*cosw) / a0,
		B2: a * ((a + 1) - (a-1)*cosw - 2*sqrtA*alpha) / a0,
		A1: -2 * ((a - 1) + (a+1)*cosw) / a0,
		A2: ((a + 1) + (a-1)*cosw - 2*sqrtA*alpha) / a0,
	}
}

// HighShelfCoefficients designs a high shelf with the given corner
// frequency, gain in dB and Q.
func HighShelfCoefficients(freq, gainDB, q, sampleRate float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	cosw, alpha := rbj(freq, q, sampleRate)
	sqrtA := math.Sqrt(a)
	a0 := (a + 1) - (a-1)*cosw + 2*sqrtA*alpha
	return Coefficients{
		B0: a * ((a + 1) + (a-1)*cosw + 2*sqrtA*alpha) / a0,
		B1: -2 * a * ((a - 1) + (a+1)*cosw) / a0,
		B2: a * ((a + 1) + (a-1)*cosw - 2*sqrtA*alpha) / a0,
		A1: 2 * ((a - 1) - (a+1)*cosw) / a0,
		A2: ((a + 1) - (a-1)*cosw - 2*sqrtA*alpha) / a0,
	}
}

// NotchCoefficients designs a notch at freq with the given Q.
func NotchCoefficients(freq, q, sampleRate float64) Coefficients {
	cosw, alpha := rbj(freq, q, sampleRate)
	a0 := 1 + alpha
	return Coefficients{
		B0: 1 / a0,
		B1: -2 * cosw / a0,
		B2: 1 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// AllPassCoefficients designs a 2nd-order allpass at freq with the
// given Q (unity magnitude, phase adjustment only).
func AllPassCoefficients(freq, q, sampleRate float64) Coefficients {
	cosw, alpha := rbj(freq, q, sampleRate)
	a0 := 1 + alpha
	return Coefficients{
		B0: (1 - alpha) / a0,
		B1: -2 * cosw / a0,
		B2: (1 + alpha) / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// BandPassCoefficients designs a constant-peak-gain bandpass at freq
// with the given Q.
func BandPassCoefficients(freq, q, sampleRate float64) Coefficients {
	cosw, alpha := rbj(freq, q, sampleRate)
	a0 := 1 + alpha
	return Coefficients{
		B0: alpha / a0,
		B1: 0,
		B2: -alpha / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// Magnitude returns the magnitude response of the section at freq.
// Used by tests and the analysis layer, not by the hot path.
func (c Coefficients) Magnitude(freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	cw, sw := math.Cos(w), math.Sin(w)
	c2w, s2w := math.Cos(2*w), math.Sin(2*w)

	numRe := c.B0 + c.B1*cw + c.B2*c2w
	numIm := -c.B1*sw - c.B2*s2w
	denRe := 1 + c.A1*cw + c.A2*c2w
	denIm := -c.A1*sw - c.A2*s2w

	num := math.Hypot(numRe, numIm)
	den := math.Hypot(denRe, denIm)
	if den == 0 {
		return 0
	}
	return num / den
}
