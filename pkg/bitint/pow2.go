// SPDX-License-Identifier: MIT
//
// Package bitint provides power-of-2 helpers used for FFT block and
// buffer sizing. All operations are O(1), allocation-free and safe to
// call from the real-time path.
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Exact powers of 2
// are preserved; zero and negative inputs return 1.
//
// The size-1 subtraction is what preserves exact powers of 2: for 8,
// bits.Len(7) is 3 and 1<<3 is 8, while bits.Len(8) would give 4 and
// incorrectly double the input.
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
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
