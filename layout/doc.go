// Package layout computes the size, alignment and member offsets of C
// types the way GCC lays them out.
//
// An Engine is bound to one ctype.Machine and one enum policy:
//
//	e := layout.New(layout.WithMachine(ctype.LP64), layout.WithEnumPolicy(enum.PolicyGCC))
//	r, err := e.Compute(t)
//	if err != nil {
//		return err
//	}
//	m, _ := r.Lookup("inner.flags")
//	fmt.Println(r.Size, r.Align, m.Offset.ByteOffset, m.Offset.BitOffset)
//
// Struct members are placed sequentially on a shared bit cursor, so plain
// members and bit-fields interleave as in C. Unpacked bit-fields never
// cross a storage unit of their declared type; packed aggregates form a
// continuous bit stream. Nested aggregates are computed first and placed as
// opaque blocks. Results are cached per type node and shared.
//
// Struct and union results always satisfy Size%Align == 0. An explicit
// aligned on a scalar, enum, typedef or variable raises the alignment but
// keeps sizeof, as GCC does.
package layout
