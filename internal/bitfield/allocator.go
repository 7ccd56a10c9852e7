// Package bitfield places the members of one struct or union on a bit
// cursor, following the GCC x86-64 rules for bit-field storage units.
package bitfield

import (
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/internal/abi"
)

// Field is one bit-field to place.
type Field struct {
	CType string
	Path  []string
	// UnitBits is the width of the backing type, UnitAlign its natural
	// alignment in bytes.
	UnitBits  uint64
	UnitAlign uint64
	Width     uint64
	// Align is the resolved alignment of the field, Explicit the combined
	// aligned(N) value or 0.
	Align    uint64
	Explicit uint64
	Packed   bool
	// Bool limits the width to one bit.
	Bool bool
}

// Allocator owns the cursor of one aggregate. Plain members and bit-fields
// share it, so a bit-field may continue a unit started by a plain member.
type Allocator struct {
	cursor uint64 // bits
	extent uint64 // union only, bytes
	align  uint64
	union  bool
}

// New returns an allocator for a struct or union.
func New(kind ctype.Kind) *Allocator {
	return &Allocator{align: 1, union: kind == ctype.KindUnion}
}

// PlaceBytes places a plain member and returns its byte offset.
func (a *Allocator) PlaceBytes(size, align uint64, path []string) (uint64, error) {
	align = abi.MaxU64(align, 1)
	a.align = abi.MaxU64(a.align, align)

	if a.union {
		a.extent = abi.MaxU64(a.extent, size)
		return 0, nil
	}

	off := abi.AlignTo(abi.BytesForBits(a.cursor), align)
	bits, ok := abi.SafeMulU64(size, abi.BitsPerByte)
	if !ok {
		return 0, errors.Overflow(errors.PhaseBitfield, path, "member size overflows the bit cursor")
	}
	end, ok := abi.SafeAddU64(off*abi.BitsPerByte, bits)
	if !ok {
		return 0, errors.Overflow(errors.PhaseBitfield, path, "aggregate size overflows")
	}
	a.cursor = end
	return off, nil
}

// PlaceBits places a bit-field and returns its absolute bit offset.
func (a *Allocator) PlaceBits(f Field) (uint64, error) {
	limit := f.UnitBits
	if f.Bool {
		limit = 1
	}
	if f.Width > limit {
		return 0, errors.BitfieldWidthOverflow(f.Path, f.CType, f.Width, limit)
	}

	if a.union {
		if f.Width == 0 {
			return 0, nil
		}
		a.align = abi.MaxU64(a.align, f.Align)
		a.extent = abi.MaxU64(a.extent, abi.BytesForBits(f.Width))
		return 0, nil
	}

	unitAlignBits := abi.MaxU64(f.UnitAlign, 1) * abi.BitsPerByte

	// A :0 field closes the current unit and consumes nothing.
	if f.Width == 0 {
		a.cursor = abi.AlignTo(a.cursor, abi.MaxU64(f.Align, 1)*abi.BitsPerByte)
		return a.cursor, nil
	}

	if f.Explicit != 0 {
		a.cursor = abi.AlignTo(a.cursor, f.Explicit*abi.BitsPerByte)
	}
	if !f.Packed {
		unitStart := abi.AlignDown(a.cursor, unitAlignBits)
		if a.cursor+f.Width > unitStart+f.UnitBits {
			a.cursor = abi.AlignTo(a.cursor, unitAlignBits)
		}
	}

	off := a.cursor
	a.cursor += f.Width
	a.align = abi.MaxU64(a.align, abi.MaxU64(f.Align, 1))
	return off, nil
}

// Raise combines a type-level alignment into the aggregate's alignment.
func (a *Allocator) Raise(align uint64) {
	a.align = abi.MaxU64(a.align, align)
}

// Align returns the aggregate alignment accumulated so far.
func (a *Allocator) Align() uint64 {
	return a.align
}

// End returns the first byte past the last placed member.
func (a *Allocator) End() uint64 {
	if a.union {
		return a.extent
	}
	return abi.BytesForBits(a.cursor)
}

// Size returns the aggregate size: End rounded up to the alignment.
func (a *Allocator) Size() uint64 {
	return abi.AlignTo(a.End(), a.align)
}
