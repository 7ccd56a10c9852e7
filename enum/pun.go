package enum

import (
	"github.com/holiman/uint256"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

// CopyResult classifies a byte copy between an enum object and a scalar
// of another type, memcpy(&dst, &src, sizeof dst) followed by the copy back.
type CopyResult struct {
	// Value is dst as read after the copy. Bytes past the source read as zero.
	Value   *uint256.Int
	SrcSize uint64
	DstSize uint64
	// Safe holds iff the widths are equal.
	Safe       bool
	Truncates  bool
	Overreads  bool
	RoundTrips bool
}

// ShiftResult is the outcome of x >> n on an enum object.
type ShiftResult struct {
	Value *uint256.Int
	// Promoted is the type the shift is evaluated in.
	Promoted   ctype.Scalar
	Arithmetic bool
}

func (s Selection) bits() uint64 {
	return s.Size * 8
}

// Convert returns v as stored in an object of the enum type.
func (s Selection) Convert(v *uint256.Int) *uint256.Int {
	return ctype.Truncate(v, s.bits(), s.Signed)
}

// Fits reports whether v survives conversion unchanged.
func (s Selection) Fits(v *uint256.Int) bool {
	return s.Convert(v).Eq(v)
}

// CopyTo stores v in an enum object and byte-copies it into dst.
func (s Selection) CopyTo(dst ctype.Scalar, v *uint256.Int) (CopyResult, error) {
	m := s.machineOrDefault()
	return copyBytes(m, s.Size, s.Convert(v), dst, s.Signed)
}

// CopyConstantBuffer copies a buffer allocated as malloc(sizeof c) holding
// the enumerator constant c into dst. The buffer width is the width of the
// constant's type, which may differ from sizeof the enum.
func (r *Resolver) CopyConstantBuffer(sel Selection, c *uint256.Int, dst ctype.Scalar) (CopyResult, error) {
	ct := r.ConstantType(sel, c)
	stored := ctype.Truncate(c, r.machine.Bits(ct), ct.IsSigned())
	return copyBytes(r.machine, r.machine.Size(ct), stored, dst, ct.IsSigned())
}

func copyBytes(m *ctype.Machine, srcSize uint64, stored *uint256.Int, dst ctype.Scalar, srcSigned bool) (CopyResult, error) {
	if !dst.IsInteger() {
		return CopyResult{}, errors.Unsupported(errors.PhaseEnum, nil, "copy into non-integer type "+dst.String())
	}
	dstSize := m.Size(dst)
	n := min(srcSize, dstSize)

	// Low n bytes of the little-endian image, zero above.
	raw := ctype.Truncate(stored, n*8, false)
	value := ctype.Truncate(raw, dstSize*8, dst.IsSigned())

	back := ctype.Truncate(value, n*8, false)
	back = ctype.Truncate(back, srcSize*8, srcSigned)

	return CopyResult{
		Value:      value,
		SrcSize:    srcSize,
		DstSize:    dstSize,
		Safe:       srcSize == dstSize,
		Truncates:  dstSize < srcSize,
		Overreads:  dstSize > srcSize,
		RoundTrips: back.Eq(stored),
	}, nil
}

// ShiftRight evaluates x >> n where x holds v. Types narrower than int
// promote to int first.
func (s Selection) ShiftRight(v *uint256.Int, n uint) (ShiftResult, error) {
	m := s.machineOrDefault()
	promoted := s.Underlying
	if s.Size < m.Size(ctype.Int) {
		promoted = ctype.Int
	}
	width := m.Bits(promoted)
	if uint64(n) >= width {
		return ShiftResult{}, errors.New(errors.PhaseEnum, errors.KindUnsupported).
			CType(promoted.String()).
			Detail("shift by %d is not below the width %d", n, width).
			Build()
	}

	x := s.Convert(v)
	z := new(uint256.Int)
	if promoted.IsSigned() {
		z.SRsh(x, n)
	} else {
		z.Rsh(x, n)
	}
	return ShiftResult{
		Value:      ctype.Truncate(z, width, promoted.IsSigned()),
		Promoted:   promoted,
		Arithmetic: s.Signed,
	}, nil
}

func (s Selection) machineOrDefault() *ctype.Machine {
	if s.machine != nil {
		return s.machine
	}
	return ctype.LP64
}
