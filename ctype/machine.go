package ctype

import "github.com/holiman/uint256"

// Machine is a target ABI table: size and natural alignment of every scalar.
type Machine struct {
	Name  string
	sizes [numScalars]uint64
	align [numScalars]uint64

	// MaxAlign is the largest value accepted in aligned(N).
	MaxAlign uint64
	// BiggestAlign is what a bare aligned attribute requests.
	BiggestAlign uint64
}

// LP64 is x86-64 Linux, the model the layout fixtures are generated on.
var LP64 = &Machine{
	Name: "linux64",
	sizes: [numScalars]uint64{
		Bool: 1, Char: 1, SChar: 1, UChar: 1,
		Short: 2, UShort: 2, Int: 4, UInt: 4,
		Long: 8, ULong: 8, LongLong: 8, ULongLong: 8,
		Float: 4, Double: 8, LongDouble: 16, Pointer: 8,
	},
	align: [numScalars]uint64{
		Bool: 1, Char: 1, SChar: 1, UChar: 1,
		Short: 2, UShort: 2, Int: 4, UInt: 4,
		Long: 8, ULong: 8, LongLong: 8, ULongLong: 8,
		Float: 4, Double: 8, LongDouble: 16, Pointer: 8,
	},
	MaxAlign:     1 << 14,
	BiggestAlign: 16,
}

// ILP32 is i386 Linux. 8-byte scalars align to 4 inside aggregates.
var ILP32 = &Machine{
	Name: "linux32",
	sizes: [numScalars]uint64{
		Bool: 1, Char: 1, SChar: 1, UChar: 1,
		Short: 2, UShort: 2, Int: 4, UInt: 4,
		Long: 4, ULong: 4, LongLong: 8, ULongLong: 8,
		Float: 4, Double: 8, LongDouble: 12, Pointer: 4,
	},
	align: [numScalars]uint64{
		Bool: 1, Char: 1, SChar: 1, UChar: 1,
		Short: 2, UShort: 2, Int: 4, UInt: 4,
		Long: 4, ULong: 4, LongLong: 4, ULongLong: 4,
		Float: 4, Double: 4, LongDouble: 4, Pointer: 4,
	},
	MaxAlign:     1 << 14,
	BiggestAlign: 16,
}

// MachineByName returns a built-in machine. The empty name selects LP64.
func MachineByName(name string) (*Machine, bool) {
	switch name {
	case "", "linux64", "lp64", "x86_64":
		return LP64, true
	case "linux32", "ilp32", "i386":
		return ILP32, true
	}
	return nil, false
}

// Size returns sizeof(s) in bytes.
func (m *Machine) Size(s Scalar) uint64 {
	return m.sizes[s]
}

// Align returns the natural alignment of s in bytes.
func (m *Machine) Align(s Scalar) uint64 {
	return m.align[s]
}

// Bits returns the width of s in bits.
func (m *Machine) Bits(s Scalar) uint64 {
	return m.sizes[s] * 8
}

// Range returns the inclusive value range of an integer scalar as
// two's-complement 256-bit values.
func (m *Machine) Range(s Scalar) (lo, hi *uint256.Int) {
	if s == Bool {
		return uint256.NewInt(0), uint256.NewInt(1)
	}
	bits := uint(m.Bits(s))
	one := uint256.NewInt(1)
	if s.IsSigned() {
		hi = new(uint256.Int).Lsh(one, bits-1)
		lo = new(uint256.Int).Neg(hi)
		hi.Sub(hi, one)
		return lo, hi
	}
	hi = new(uint256.Int).Lsh(one, bits)
	hi.Sub(hi, one)
	return uint256.NewInt(0), hi
}

// Contains reports whether v lies inside the range of s.
func (m *Machine) Contains(s Scalar, v *uint256.Int) bool {
	lo, hi := m.Range(s)
	return !v.Slt(lo) && !v.Sgt(hi)
}
