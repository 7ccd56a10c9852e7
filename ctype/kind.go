package ctype

type Kind uint8

const (
	KindScalar Kind = iota
	KindStruct
	KindUnion
	KindEnum
	KindArray
	KindTypedef
)

var kindNames = [...]string{
	KindScalar:  "scalar",
	KindStruct:  "struct",
	KindUnion:   "union",
	KindEnum:    "enum",
	KindArray:   "array",
	KindTypedef: "typedef",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsAggregate reports whether members are laid out for this kind.
func (k Kind) IsAggregate() bool {
	return k == KindStruct || k == KindUnion
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}
