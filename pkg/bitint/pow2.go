// SPDX-License-Identifier: MIT

/*
Package bitint provides the power-of-2 helpers used for transform sizing.

The radix-2 paths of both FFT backends only apply to power-of-2 widths;
other widths still work but take the slower mixed-radix or Bluestein
route.

	size := bitint.NextPowerOfTwo(1536) // 2048
	fast := bitint.IsPowerOfTwo(size)   // true

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of 2 are preserved: for 8, bits.Len(7) is 3 and 1<<3 is 8, where
bits.Len(8) would give 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Non-positive
// sizes give 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of 2 has
// one bit set, so n&(n-1) clears it to zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
