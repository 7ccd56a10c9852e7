package ctype

import "strings"

// Scalar is a C arithmetic or pointer type whose size and alignment come
// from a Machine.
type Scalar uint8

const (
	Bool Scalar = iota
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
	Pointer
	numScalars
)

var scalarNames = [...]string{
	Bool:       "_Bool",
	Char:       "char",
	SChar:      "signed char",
	UChar:      "unsigned char",
	Short:      "short",
	UShort:     "unsigned short",
	Int:        "int",
	UInt:       "unsigned int",
	Long:       "long",
	ULong:      "unsigned long",
	LongLong:   "long long",
	ULongLong:  "unsigned long long",
	Float:      "float",
	Double:     "double",
	LongDouble: "long double",
	Pointer:    "void *",
}

func (s Scalar) String() string {
	if s < numScalars {
		return scalarNames[s]
	}
	return "unknown"
}

// IsInteger reports whether s may back a bit-field or an enum.
func (s Scalar) IsInteger() bool {
	return s <= ULongLong
}

// IsSigned reports the signedness of s. Plain char is signed, as on the
// x86 targets the fixtures are generated for.
func (s Scalar) IsSigned() bool {
	switch s {
	case Char, SChar, Short, Int, Long, LongLong, Float, Double, LongDouble:
		return true
	default:
		return false
	}
}

// Unsigned returns the unsigned counterpart of an integer type.
func (s Scalar) Unsigned() Scalar {
	switch s {
	case Char, SChar:
		return UChar
	case Short:
		return UShort
	case Int:
		return UInt
	case Long:
		return ULong
	case LongLong:
		return ULongLong
	default:
		return s
	}
}

// scalarAliases lists accepted spellings beyond the canonical names.
var scalarAliases = map[string]Scalar{
	"bool":                   Bool,
	"signed":                 Int,
	"signed int":             Int,
	"unsigned":               UInt,
	"short int":              Short,
	"signed short":           Short,
	"signed short int":       Short,
	"unsigned short int":     UShort,
	"long int":               Long,
	"signed long":            Long,
	"signed long int":        Long,
	"unsigned long int":      ULong,
	"long long int":          LongLong,
	"signed long long":       LongLong,
	"signed long long int":   LongLong,
	"unsigned long long int": ULongLong,
	"pointer":                Pointer,
	"void*":                  Pointer,
}

// ParseScalar resolves a C type spelling such as "unsigned int" or "long long".
func ParseScalar(name string) (Scalar, bool) {
	name = strings.Join(strings.Fields(name), " ")
	for i, n := range scalarNames {
		if n == name {
			return Scalar(i), true
		}
	}
	s, ok := scalarAliases[name]
	return s, ok
}
