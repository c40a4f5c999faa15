// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-2 helpers for real-time audio sizing.
Frame buffers, delay lines and analysis windows are kept at power-of-2
lengths so that circular indexing reduces to a bit mask.

All operations are O(1), allocation free, and safe to call from the
audio hot path.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 greater than or equal
// to size. Inputs <= 0 return 1.
//
// The size-1 subtraction keeps exact powers of 2 from being doubled:
// for size=8, bits.Len64(7)=3 and 1<<3=8.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	// 64-bit platforms (where int is 64-bit)
	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	// 32-bit platforms
	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Mask returns the wrap mask for a power-of-2 buffer of length n.
// Callers size buffers with NextPowerOfTwo first; for other lengths
// the result is meaningless.
func Mask(n int) int {
	return n - 1
}
