package enum

import "github.com/wippyai/clayout/ctype"

// Policy selects the candidate table for underlying types.
type Policy uint8

const (
	// PolicyPreferSigned tries int before unsigned int at every width.
	PolicyPreferSigned Policy = iota
	// PolicyGCC uses unsigned candidates when no enumerator is negative and
	// signed candidates otherwise.
	PolicyGCC
)

var policyNames = [...]string{
	PolicyPreferSigned: "prefer-signed",
	PolicyGCC:          "gcc",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// ParsePolicy maps a policy name to its Policy.
func ParsePolicy(s string) (Policy, bool) {
	for p, name := range policyNames {
		if name == s {
			return Policy(p), true
		}
	}
	return 0, false
}

var (
	unpackedCandidates = []ctype.Scalar{
		ctype.Int, ctype.UInt,
		ctype.Long, ctype.ULong,
		ctype.LongLong, ctype.ULongLong,
	}
	packedCandidates = []ctype.Scalar{
		ctype.SChar, ctype.UChar,
		ctype.Short, ctype.UShort,
		ctype.Int, ctype.UInt,
		ctype.Long, ctype.ULong,
		ctype.LongLong, ctype.ULongLong,
	}
)

func (p Policy) candidates(packed, negative bool) []ctype.Scalar {
	table := unpackedCandidates
	if packed {
		table = packedCandidates
	}
	if p != PolicyGCC {
		return table
	}
	out := make([]ctype.Scalar, 0, len(table)/2)
	for _, s := range table {
		if s.IsSigned() == negative {
			out = append(out, s)
		}
	}
	return out
}
