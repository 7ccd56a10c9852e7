// Package ctype models C type declarations as the layout engine consumes
// them: scalar, struct, union, enum, array and typedef nodes, their members
// and enumerators, and the packed/aligned attachments that affect layout.
//
// A Machine supplies the size and natural alignment of every scalar. LP64
// matches x86-64 Linux; ILP32 matches i386 Linux.
//
//	s := ctype.Struct("s", ctype.Attributes{Packed: true},
//		ctype.BitField("first", ctype.NewScalar(ctype.UChar), 2),
//		ctype.BitField("second", ctype.NewScalar(ctype.UChar), 2),
//	)
//
// Enumerator values are two's-complement 256-bit integers so that both
// LLONG_MIN and ULLONG_MAX, and ranges that no C type can hold, are
// representable.
package ctype
