package abi

import "math"

// BitsPerByte is CHAR_BIT on every supported machine.
const BitsPerByte = 8

func SafeMulU64(a, b uint64) (uint64, bool) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// AlignTo rounds offset up to a multiple of align. align must be a power of
// two; zero leaves offset unchanged.
func AlignTo(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// AlignDown rounds offset down to a multiple of align.
func AlignDown(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return offset &^ (align - 1)
}

func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

// BytesForBits is the number of whole bytes needed to hold bits.
func BytesForBits(bits uint64) uint64 {
	return (bits + BitsPerByte - 1) / BitsPerByte
}

func MaxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
