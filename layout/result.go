package layout

import (
	"strings"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/enum"
)

// Offset locates a member inside its aggregate. For bit-fields the first
// bit is at ByteOffset*8 + BitOffset; BitOffset is always below 8.
type Offset struct {
	ByteOffset uint64
	BitOffset  uint64
	BitWidth   uint64
	IsBitField bool
}

// Bit returns the absolute bit position of the member.
func (o Offset) Bit() uint64 {
	return o.ByteOffset*8 + o.BitOffset
}

// MemberLayout is the placement of one member.
type MemberLayout struct {
	Type   *ctype.Type
	Nested *Result
	Name   string
	Offset Offset
	// Size is sizeof the member's declared type, Align the alignment it
	// was placed at.
	Size  uint64
	Align uint64
	// Attrs is the member-level attachment as declared.
	Attrs     ctype.Attributes
	Anonymous bool
	// Signed is set for members of signed integer or enum type.
	Signed bool
}

// Result is the computed layout of a type or variable. Results are shared
// read-only values.
type Result struct {
	Type    *ctype.Type
	Enum    *enum.Selection
	Name    string
	Members []MemberLayout
	Size    uint64
	Align   uint64
}

// Lookup resolves a dotted member path such as "inner.flags", descending
// through nested and anonymous members. The returned offset is relative to
// the start of r.
func (r *Result) Lookup(path string) (MemberLayout, bool) {
	if r == nil || path == "" {
		return MemberLayout{}, false
	}
	cur := r
	var base uint64
	var found MemberLayout
	for _, name := range strings.Split(path, ".") {
		if cur == nil {
			return MemberLayout{}, false
		}
		m, off, ok := cur.find(name)
		if !ok {
			return MemberLayout{}, false
		}
		found = m
		found.Offset.ByteOffset = base + off
		base = found.Offset.ByteOffset
		cur = m.Nested
	}
	return found, true
}

func (r *Result) find(name string) (MemberLayout, uint64, bool) {
	for _, m := range r.Members {
		if m.Name == name && name != "" {
			return m, m.Offset.ByteOffset, true
		}
	}
	for _, m := range r.Members {
		if !m.Anonymous || m.Nested == nil {
			continue
		}
		if sub, off, ok := m.Nested.find(name); ok {
			return sub, m.Offset.ByteOffset + off, true
		}
	}
	return MemberLayout{}, 0, false
}

// Fields returns the named members in declaration order with anonymous
// members flattened, offsets relative to r.
func (r *Result) Fields() []MemberLayout {
	var out []MemberLayout
	r.fields(0, &out)
	return out
}

func (r *Result) fields(base uint64, out *[]MemberLayout) {
	for _, m := range r.Members {
		if m.Anonymous && m.Nested != nil {
			m.Nested.fields(base+m.Offset.ByteOffset, out)
			continue
		}
		if m.Name == "" {
			continue
		}
		m.Offset.ByteOffset += base
		*out = append(*out, m)
	}
}
