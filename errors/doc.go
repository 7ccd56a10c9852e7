// Package errors provides structured error types for the clayout module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, C type spelling, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBitfield, errors.KindBitfieldWidthOverflow).
//		Path("bare", "first").
//		CType("unsigned char").
//		Detail("width %d exceeds %d bits", 9, 8).
//		Build()
//
// Or use convenience constructors for the layout failures:
//
//	err := errors.BitfieldWidthOverflow(path, "unsigned char", 9, 8)
//	err := errors.InvalidAlignment(path, 3, 1<<14)
//	err := errors.EnumRangeUnrepresentable("enum E", "-1", "18446744073709551615")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
