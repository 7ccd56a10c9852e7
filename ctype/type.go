package ctype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// AlignedMax in Attributes.Aligned requests the machine's biggest alignment,
// as a bare aligned attribute does.
const AlignedMax = ^uint64(0)

// Attributes is one packed/aligned attachment on a type, typedef, member
// or variable. Aligned == 0 means no explicit alignment.
type Attributes struct {
	Packed  bool
	Aligned uint64
}

// IsZero reports whether no attribute is set.
func (a Attributes) IsZero() bool {
	return !a.Packed && a.Aligned == 0
}

func (a Attributes) String() string {
	var parts []string
	if a.Packed {
		parts = append(parts, "packed")
	}
	switch a.Aligned {
	case 0:
	case AlignedMax:
		parts = append(parts, "aligned")
	default:
		parts = append(parts, fmt.Sprintf("aligned(%d)", a.Aligned))
	}
	return strings.Join(parts, ", ")
}

// Type is a node of a C type declaration. Nodes are immutable once built;
// the layout engine caches results by node identity.
type Type struct {
	Elem        *Type
	Name        string
	Members     []Member
	Enumerators []Enumerator
	Len         int64
	Attrs       Attributes
	Kind        Kind
	Scalar      Scalar
}

// Member is a field of a struct or union.
type Member struct {
	Type       *Type
	Name       string
	BitWidth   uint64
	Attrs      Attributes
	IsBitField bool
}

// Enumerator is a named enum constant.
type Enumerator struct {
	Value *uint256.Int
	Name  string
}

// Variable is a declared object whose own attributes are the innermost
// attachment of its alignment.
type Variable struct {
	Type  *Type
	Name  string
	Attrs Attributes
}

// NewScalar returns a scalar type node.
func NewScalar(s Scalar) *Type {
	return &Type{Kind: KindScalar, Scalar: s}
}

// Struct returns a struct type node.
func Struct(tag string, attrs Attributes, members ...Member) *Type {
	return &Type{Kind: KindStruct, Name: tag, Attrs: attrs, Members: members}
}

// Union returns a union type node.
func Union(tag string, attrs Attributes, members ...Member) *Type {
	return &Type{Kind: KindUnion, Name: tag, Attrs: attrs, Members: members}
}

// Enum returns an enum type node.
func Enum(tag string, attrs Attributes, enumerators ...Enumerator) *Type {
	return &Type{Kind: KindEnum, Name: tag, Attrs: attrs, Enumerators: enumerators}
}

// Array returns an array of n elems. n < 0 declares a flexible array member.
func Array(elem *Type, n int64) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

// Typedef returns an alias for t carrying its own attribute attachment.
func Typedef(name string, t *Type, attrs Attributes) *Type {
	return &Type{Kind: KindTypedef, Name: name, Elem: t, Attrs: attrs}
}

// Field returns a plain member.
func Field(name string, t *Type) Member {
	return Member{Name: name, Type: t}
}

// BitField returns a bit-field member. A zero width must be unnamed.
func BitField(name string, t *Type, width uint64) Member {
	return Member{Name: name, Type: t, IsBitField: true, BitWidth: width}
}

// With returns a copy of m with the member-level attachment set.
func (m Member) With(a Attributes) Member {
	m.Attrs = a
	return m
}

// IsAnonymous reports whether m is an unnamed struct or union whose fields
// are reachable through the enclosing aggregate.
func (m Member) IsAnonymous() bool {
	if m.Name != "" || m.IsBitField || m.Type == nil {
		return false
	}
	return m.Type.Strip().Kind.IsAggregate()
}

// Int64 builds an enumerator from a signed value.
func Int64(name string, v int64) Enumerator {
	return Enumerator{Name: name, Value: FromInt64(v)}
}

// Uint64 builds an enumerator from an unsigned value.
func Uint64(name string, v uint64) Enumerator {
	return Enumerator{Name: name, Value: uint256.NewInt(v)}
}

// Strip follows typedefs to the aliased type.
func (t *Type) Strip() *Type {
	for t != nil && t.Kind == KindTypedef {
		t = t.Elem
	}
	return t
}

// IsInteger reports whether t (after typedefs) may back a bit-field.
func (t *Type) IsInteger() bool {
	u := t.Strip()
	if u == nil {
		return false
	}
	return u.Kind == KindEnum || (u.Kind == KindScalar && u.Scalar.IsInteger())
}

// Spelling returns the C spelling used in reports and errors.
func (t *Type) Spelling() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindScalar:
		return t.Scalar.String()
	case KindStruct, KindUnion, KindEnum:
		if t.Name == "" {
			return t.Kind.String() + " <anonymous>"
		}
		return t.Kind.String() + " " + t.Name
	case KindArray:
		if t.Len < 0 {
			return t.Elem.Spelling() + "[]"
		}
		return t.Elem.Spelling() + "[" + strconv.FormatInt(t.Len, 10) + "]"
	case KindTypedef:
		return t.Name
	}
	return "unknown"
}

func (t *Type) String() string {
	return t.Spelling()
}
