// SPDX-License-Identifier: MIT
/*
Package dsp implements the per-output-channel processing chain of the
crossover: Crossover -> EQ -> Compressor -> Limiter -> Delay -> Gain.

Every stage owns its persistent state (filter histories, envelope
followers, delay lines) explicitly; nothing lives in package globals.
Stages are configured from validated snapshots and never fail at
runtime: a disabled stage is an exact identity, a misconfigured one
degrades gracefully.
*/
package dsp

import "math"

// silenceDB is the floor used when converting linear values to dB.
// Anything below ~1e-4 linear is treated as silence.
const silenceDB = -80.0

// DbToLinear converts a dB value to a linear gain factor.
// Values at or below the silence floor map to 0.
func DbToLinear(db float64) float64 {
	if db <= silenceDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// LinearToDb converts a linear gain factor to dB, clamped at the
// silence floor.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return silenceDB
	}
	db := 20 * math.Log10(linear)
	if db < silenceDB {
		return silenceDB
	}
	return db
}

// clamp bounds x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
