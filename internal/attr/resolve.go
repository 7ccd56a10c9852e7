// Package attr merges packed and aligned attachments from the typedef, type,
// member and variable levels into one effective alignment policy.
package attr

import (
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/internal/abi"
)

// Input describes one declaration site.
type Input struct {
	// Attachments in order typedef, type, member or variable.
	Attachments []ctype.Attributes
	Path        []string
	// Natural is the alignment of the declared type without attributes.
	Natural       uint64
	ContextPacked bool
	BitField      bool
	// ZeroWidth marks an unnamed :0 bit-field.
	ZeroWidth bool
}

// Effective is the normalized policy of a declaration site.
type Effective struct {
	// Align is the alignment the site is placed at.
	Align uint64
	// Explicit is the combined aligned(N) value, 0 when none is attached.
	Explicit uint64
	Packed   bool
}

// Resolve computes the effective policy.
//
// Explicit alignments combine by maximum across all attachments. With an
// explicit value the alignment is N when packed and max(N, natural)
// otherwise. Without one, packing strips the alignment to 1. Zero-width
// bit-fields are boundary markers and keep their natural alignment.
func Resolve(m *ctype.Machine, in Input) (Effective, error) {
	eff := Effective{Packed: in.ContextPacked}

	for _, a := range in.Attachments {
		if a.Packed {
			eff.Packed = true
		}
		n, err := Normalize(m, a.Aligned, in.Path)
		if err != nil {
			return Effective{}, err
		}
		eff.Explicit = abi.MaxU64(eff.Explicit, n)
	}

	natural := abi.MaxU64(in.Natural, 1)
	switch {
	case in.ZeroWidth:
		eff.Align = abi.MaxU64(natural, eff.Explicit)
	case eff.Explicit != 0 && eff.Packed:
		eff.Align = eff.Explicit
	case eff.Explicit != 0:
		eff.Align = abi.MaxU64(eff.Explicit, natural)
	case eff.Packed:
		eff.Align = 1
	default:
		eff.Align = natural
	}
	return eff, nil
}

// Normalize validates one aligned(N) value. AlignedMax maps to the
// machine's biggest alignment; 0 stays 0.
func Normalize(m *ctype.Machine, n uint64, path []string) (uint64, error) {
	switch {
	case n == 0:
		return 0, nil
	case n == ctype.AlignedMax:
		return m.BiggestAlign, nil
	case !abi.IsPowerOfTwo(n) || n > m.MaxAlign:
		return 0, errors.InvalidAlignment(path, n, m.MaxAlign)
	}
	return n, nil
}
