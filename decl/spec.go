package decl

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/clayout/ctype"
)

type document struct {
	Machine   string         `yaml:"machine"`
	Policy    string         `yaml:"policy"`
	Types     []typeSpec     `yaml:"types"`
	Variables []variableSpec `yaml:"variables"`
}

// typeSpec declares one struct, union, enum or typedef. Exactly one of the
// kind keys is set; its value is the tag or typedef name.
type typeSpec struct {
	Struct      *string      `yaml:"struct"`
	Union       *string      `yaml:"union"`
	Enum        *string      `yaml:"enum"`
	Typedef     *string      `yaml:"typedef"`
	Def         *typeSpec    `yaml:"def"`
	Len         *int64       `yaml:"len"`
	Type        string       `yaml:"type"`
	Members     []memberSpec `yaml:"members"`
	Enumerators []yaml.Node  `yaml:"enumerators"`
	Aligned     alignSpec    `yaml:"aligned"`
	Packed      bool         `yaml:"packed"`
}

type memberSpec struct {
	Def     *typeSpec `yaml:"def"`
	Bits    *uint64   `yaml:"bits"`
	Len     *int64    `yaml:"len"`
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Aligned alignSpec `yaml:"aligned"`
	Packed  bool      `yaml:"packed"`
}

type variableSpec struct {
	Def     *typeSpec `yaml:"def"`
	Len     *int64    `yaml:"len"`
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Aligned alignSpec `yaml:"aligned"`
	Packed  bool      `yaml:"packed"`
}

type enumeratorSpec struct {
	Value valueSpec `yaml:"value"`
	Name  string    `yaml:"name"`
}

// valueSpec keeps the literal text of an enumerator value so that C forms
// such as 0x10, 017 or 1ULL reach ctype.ParseValue unchanged.
type valueSpec struct {
	lit string
	set bool
}

func (v *valueSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: enumerator value must be a scalar", value.Line)
	}
	v.lit, v.set = value.Value, true
	return nil
}

// alignSpec accepts an integer, or true / "max" for a bare aligned.
type alignSpec uint64

func (a *alignSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			*a = alignSpec(ctype.AlignedMax)
		}
		return nil
	case "!!str":
		if value.Value == "max" {
			*a = alignSpec(ctype.AlignedMax)
			return nil
		}
	}
	n, err := strconv.ParseUint(value.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid aligned value %q", value.Line, value.Value)
	}
	*a = alignSpec(n)
	return nil
}

func (a alignSpec) attrs(packed bool) ctype.Attributes {
	return ctype.Attributes{Packed: packed, Aligned: uint64(a)}
}

func (s *typeSpec) kind() (ctype.Kind, string, int) {
	var (
		kind  ctype.Kind
		name  string
		count int
	)
	if s.Struct != nil {
		kind, name, count = ctype.KindStruct, *s.Struct, count+1
	}
	if s.Union != nil {
		kind, name, count = ctype.KindUnion, *s.Union, count+1
	}
	if s.Enum != nil {
		kind, name, count = ctype.KindEnum, *s.Enum, count+1
	}
	if s.Typedef != nil {
		kind, name, count = ctype.KindTypedef, *s.Typedef, count+1
	}
	return kind, name, count
}
