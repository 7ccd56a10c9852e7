// Package storage holds the little-endian byte image of an object laid out
// by the layout package. Members and bit-fields are written and read at
// their computed offsets, so byte patterns can be checked against what a
// compiler produces for the same declaration.
package storage

import (
	"github.com/holiman/uint256"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/internal/abi"
	"github.com/wippyai/clayout/layout"
)

// Image is a zero-initialized object of a computed layout.
type Image struct {
	layout *layout.Result
	buf    []byte
}

// New allocates a zeroed image of sizeof r bytes.
func New(r *layout.Result) *Image {
	return &Image{layout: r, buf: make([]byte, r.Size)}
}

// Layout returns the layout the image was built from.
func (im *Image) Layout() *layout.Result {
	return im.layout
}

// Bytes returns the image. The slice aliases the image's storage.
func (im *Image) Bytes() []byte {
	return im.buf
}

// Reset zeroes the image.
func (im *Image) Reset() {
	clear(im.buf)
}

// Set assigns v to the member at path, converting it to the member's type.
func (im *Image) Set(path string, v *uint256.Int) error {
	m, err := im.member(path)
	if err != nil {
		return err
	}
	if m.Offset.IsBitField {
		im.putBits(m.Offset.Bit(), m.Offset.BitWidth, v)
		return nil
	}
	im.putBytes(m.Offset.ByteOffset, m.Size, v)
	return nil
}

// SetAllOnes sets every bit of the member at path.
func (im *Image) SetAllOnes(path string) error {
	return im.Set(path, new(uint256.Int).Not(new(uint256.Int)))
}

// Get reads the member at path, sign-extending signed members.
func (im *Image) Get(path string) (*uint256.Int, error) {
	m, err := im.member(path)
	if err != nil {
		return nil, err
	}
	if m.Offset.IsBitField {
		raw := im.getBits(m.Offset.Bit(), m.Offset.BitWidth)
		return ctype.Truncate(raw, m.Offset.BitWidth, m.Signed), nil
	}
	raw := im.getBytes(m.Offset.ByteOffset, m.Size)
	return ctype.Truncate(raw, m.Size*abi.BitsPerByte, m.Signed), nil
}

func (im *Image) member(path string) (layout.MemberLayout, error) {
	m, ok := im.layout.Lookup(path)
	if !ok {
		return layout.MemberLayout{}, errors.NotFound(errors.PhaseLayout, "member", path)
	}
	if m.Nested != nil || !m.Type.IsInteger() {
		return layout.MemberLayout{}, errors.Unsupported(errors.PhaseLayout, []string{path},
			"value access to non-integer member of type "+m.Type.Spelling())
	}
	end := m.Offset.ByteOffset + m.Size
	if m.Offset.IsBitField {
		end = abi.BytesForBits(m.Offset.Bit() + m.Offset.BitWidth)
	}
	if m.Size > 32 || end > uint64(len(im.buf)) {
		return layout.MemberLayout{}, errors.Overflow(errors.PhaseLayout, []string{path}, "member outside the object")
	}
	return m, nil
}

func (im *Image) putBytes(off, size uint64, v *uint256.Int) {
	be := v.Bytes32()
	for i := uint64(0); i < size; i++ {
		im.buf[off+i] = be[31-i]
	}
}

func (im *Image) getBytes(off, size uint64) *uint256.Int {
	var be [32]byte
	for i := uint64(0); i < size; i++ {
		be[31-i] = im.buf[off+i]
	}
	return new(uint256.Int).SetBytes(be[:])
}

// Bits are numbered from the least significant bit of byte 0.
func (im *Image) putBits(bit, width uint64, v *uint256.Int) {
	x := v.Uint64()
	for i := uint64(0); i < width; i++ {
		pos := bit + i
		mask := byte(1) << (pos % abi.BitsPerByte)
		if x>>i&1 == 1 {
			im.buf[pos/abi.BitsPerByte] |= mask
		} else {
			im.buf[pos/abi.BitsPerByte] &^= mask
		}
	}
}

func (im *Image) getBits(bit, width uint64) *uint256.Int {
	var x uint64
	for i := uint64(0); i < width; i++ {
		pos := bit + i
		if im.buf[pos/abi.BitsPerByte]>>(pos%abi.BitsPerByte)&1 == 1 {
			x |= 1 << i
		}
	}
	return uint256.NewInt(x)
}
