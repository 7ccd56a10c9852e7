// Package abi provides the alignment arithmetic shared by the layout,
// bit-field and enum packages.
//
// # Contents
//
//   - helpers.go: rounding to power-of-two boundaries, bit/byte conversion
//     and overflow-checked arithmetic for array sizes
//
// All offsets are byte offsets unless a name says bits.
package abi
