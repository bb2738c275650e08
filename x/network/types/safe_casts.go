package types

import "math"

// SaturateInt64ToUint64 bounds an int64 before casting to uint64, treating negatives as zero.
func SaturateInt64ToUint64(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// SaturateIntToUint32 bounds an int before casting to uint32, treating negatives as zero.
func SaturateIntToUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	if v > int(math.MaxUint32) {
		return math.MaxUint32
	}
	return uint32(v)
}

// SaturateUint64ToUint32 bounds a uint64 before casting to uint32 to avoid overflow.
func SaturateUint64ToUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// SaturatingAddUint64 adds without wrapping.
func SaturatingAddUint64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// SaturatingSubUint64 subtracts, flooring at zero.
func SaturatingSubUint64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
