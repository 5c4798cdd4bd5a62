// Package hash implements the fast modular hash the recognizer derives seeds with
package hash

// Hash mixes n with salt s and reduces the result into 0..max-1.
func Hash(n uint32, s uint32, max uint32) uint32 {
	var m = uint32(n) - uint32(s)

	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	m += s

	// multiply-shift instead of modulo, see
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// Seed derives the n-th independent random seed from a base seed.
func Seed(base int64, n int) int64 {
	lo := Hash(uint32(n)+1, uint32(base), 1<<31)
	hi := Hash(uint32(n)+1, uint32(base>>32)^lo, 1<<31)
	return int64(hi)<<31 | int64(lo)
}
