// SPDX-License-Identifier: MIT
// Package utils holds shared test helpers: deterministic signal
// generators and a capturing transport. Production code must not
// depend on this package.
package utils

import (
	"math"
	"sync"
)

// GenerateSineWave returns size samples of a unit-amplitude sine at the
// given frequency, scaled by amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// GenerateDC returns size samples of the constant value level.
func GenerateDC(size int, level float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = level
	}
	return buffer
}

// GenerateStep returns size samples that sit at before until the sample
// index at, then jump to after. Used for attack/release timing tests.
func GenerateStep(size, at int, before, after float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		if i < at {
			buffer[i] = before
		} else {
			buffer[i] = after
		}
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental plus two harmonics,
// useful for spectrum tests that need more than one peak.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
	}
	return buffer
}

// MockTransport implements the transport.Transport interface for tests,
// recording every payload it is handed.
type MockTransport struct {
	mu       sync.Mutex
	Payloads []any
}

// Send stores the payload for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Payloads = append(m.Payloads, data)
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error { return nil }

// Last returns the most recent payload, or nil if nothing was sent.
func (m *MockTransport) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Payloads) == 0 {
		return nil
	}
	return m.Payloads[len(m.Payloads)-1]
}
