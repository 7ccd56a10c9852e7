package bitfield

import (
	"testing"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

type step struct {
	plain    bool
	size     uint64 // plain
	unit     uint64 // bit-field backing type size in bytes
	width    uint64
	explicit uint64
	wantBit  uint64
}

func uintField(width uint64) step  { return step{unit: 4, width: width} }
func ucharField(width uint64) step { return step{unit: 1, width: width} }

func run(t *testing.T, kind ctype.Kind, packed bool, steps []step) *Allocator {
	t.Helper()
	a := New(kind)
	for i, s := range steps {
		if s.plain {
			align := s.size
			if packed {
				align = 1
			}
			off, err := a.PlaceBytes(s.size, align, nil)
			if err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
			if off*8 != s.wantBit {
				t.Errorf("step %d: got bit %d, want %d", i, off*8, s.wantBit)
			}
			continue
		}
		align := s.unit
		switch {
		case s.width == 0:
		case s.explicit != 0 && packed:
			align = s.explicit
		case s.explicit > align:
			align = s.explicit
		case packed:
			align = 1
		}
		off, err := a.PlaceBits(Field{
			UnitBits:  s.unit * 8,
			UnitAlign: s.unit,
			Width:     s.width,
			Align:     align,
			Explicit:  s.explicit,
			Packed:    packed,
		})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if off != s.wantBit {
			t.Errorf("step %d: got bit %d, want %d", i, off, s.wantBit)
		}
	}
	return a
}

func TestStructFixtures(t *testing.T) {
	tests := []struct {
		name   string
		packed bool
		steps  []step
		size   uint64
		align  uint64
	}{
		{
			name:  "zero width markers only",
			steps: []step{ucharField(0), {unit: 4, explicit: 2}},
			size:  0,
			align: 1,
		},
		{
			name:  "zero width then 23 bits",
			steps: []step{ucharField(0), {unit: 4, width: 23}},
			size:  4,
			align: 4,
		},
		{
			name:  "two 23 bit fields do not share a unit",
			steps: []step{{unit: 4, width: 23}, {unit: 4, width: 23, wantBit: 32}},
			size:  8,
			align: 4,
		},
		{
			name:  "bit-field continues a plain char",
			steps: []step{{plain: true, size: 1}, {unit: 4, width: 7, wantBit: 8}},
			size:  4,
			align: 4,
		},
		{
			name:   "packed aligned(2) 2 bit fields",
			packed: true,
			steps:  []step{{unit: 4, width: 2, explicit: 2}, {unit: 4, width: 2, explicit: 2, wantBit: 16}},
			size:   4,
			align:  2,
		},
		{
			name:   "packed aligned(2) 2 and 23 bits",
			packed: true,
			steps:  []step{{unit: 4, width: 2, explicit: 2}, {unit: 4, width: 23, explicit: 2, wantBit: 16}},
			size:   6,
			align:  2,
		},
		{
			name:   "packed uchar 2 and 2",
			packed: true,
			steps:  []step{ucharField(2), {unit: 1, width: 2, wantBit: 2}},
			size:   1,
			align:  1,
		},
		{
			name:   "packed uchar crosses a byte",
			packed: true,
			steps:  []step{ucharField(2), {unit: 1, width: 7, wantBit: 2}},
			size:   2,
			align:  1,
		},
		{
			name:   "packed uint 23 and 31",
			packed: true,
			steps:  []step{uintField(23), {unit: 4, width: 31, wantBit: 23}},
			size:   7,
			align:  1,
		},
		{
			name:   "packed uchar 7 and uint 31",
			packed: true,
			steps:  []step{ucharField(7), {unit: 4, width: 31, wantBit: 7}},
			size:   5,
			align:  1,
		},
		{
			name:   "packed char then zero width",
			packed: true,
			steps:  []step{{plain: true, size: 1}, {unit: 1, width: 0, wantBit: 8}},
			size:   1,
			align:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := run(t, ctype.KindStruct, tt.packed, tt.steps)
			if got := a.Size(); got != tt.size {
				t.Errorf("size: got %d, want %d", got, tt.size)
			}
			if got := a.Align(); got != tt.align {
				t.Errorf("align: got %d, want %d", got, tt.align)
			}
			if a.Size()%a.Align() != 0 {
				t.Errorf("size %d not a multiple of align %d", a.Size(), a.Align())
			}
		})
	}
}

func TestZeroWidthDoesNotRaiseAlignment(t *testing.T) {
	a := run(t, ctype.KindStruct, false, []step{
		{plain: true, size: 1},
		{unit: 8, width: 0, wantBit: 64},
		{plain: true, size: 1, wantBit: 64},
	})
	if a.Align() != 1 {
		t.Errorf("align: got %d, want 1", a.Align())
	}
	if a.Size() != 9 {
		t.Errorf("size: got %d, want 9", a.Size())
	}
}

func TestUnion(t *testing.T) {
	a := run(t, ctype.KindUnion, true, []step{
		{unit: 4, width: 2, explicit: 2},
		{unit: 4, width: 2, explicit: 2},
	})
	if a.Size() != 2 || a.Align() != 2 {
		t.Errorf("packed union: got size %d align %d, want 2 and 2", a.Size(), a.Align())
	}

	b := run(t, ctype.KindUnion, false, []step{
		{plain: true, size: 1},
		{unit: 4, width: 17},
	})
	if b.Size() != 4 || b.Align() != 4 {
		t.Errorf("union: got size %d align %d, want 4 and 4", b.Size(), b.Align())
	}
	if b.End() != 3 {
		t.Errorf("union extent: got %d, want 3", b.End())
	}
}

func TestRaise(t *testing.T) {
	a := New(ctype.KindStruct)
	if _, err := a.PlaceBytes(2, 1, nil); err != nil {
		t.Fatal(err)
	}
	a.Raise(8)
	if a.Size() != 8 || a.Align() != 8 {
		t.Errorf("got size %d align %d, want 8 and 8", a.Size(), a.Align())
	}
}

func TestWidthOverflow(t *testing.T) {
	tests := []struct {
		name  string
		field Field
	}{
		{"char of nine bits", Field{UnitBits: 8, UnitAlign: 1, Width: 9, Align: 1}},
		{"int of 33 bits", Field{UnitBits: 32, UnitAlign: 4, Width: 33, Align: 4}},
		{"bool of two bits", Field{UnitBits: 8, UnitAlign: 1, Width: 2, Align: 1, Bool: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctype.KindStruct).PlaceBits(tt.field)
			if !errors.IsKind(err, errors.KindBitfieldWidthOverflow) {
				t.Errorf("got %v, want bitfield_width_overflow", err)
			}
		})
	}
}

func TestPlaceBytesOverflow(t *testing.T) {
	a := New(ctype.KindStruct)
	if _, err := a.PlaceBytes(^uint64(0)/4, 1, []string{"big"}); !errors.IsKind(err, errors.KindOverflow) {
		t.Errorf("got %v, want overflow", err)
	}
}
