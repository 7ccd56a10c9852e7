package decl

import (
	"path/filepath"
	"testing"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/enum"
	"github.com/wippyai/clayout/errors"
)

func loadFixtures(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(filepath.Join("testdata", "fixtures.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return doc
}

func TestLoadFixtures(t *testing.T) {
	doc := loadFixtures(t)
	if doc.Machine != ctype.LP64 {
		t.Errorf("machine: got %s, want linux64", doc.Machine.Name)
	}
	if doc.Policy != enum.PolicyGCC {
		t.Errorf("policy: got %v, want gcc", doc.Policy)
	}
	if len(doc.Types) != 12 {
		t.Errorf("types: got %d, want 12", len(doc.Types))
	}
	if len(doc.Variables) != 6 {
		t.Errorf("variables: got %d, want 6", len(doc.Variables))
	}

	e := doc.Engine()
	tests := []struct {
		ref   string
		size  uint64
		align uint64
	}{
		{"struct npsw2m_23_23", 8, 4},
		{"struct npsw2m_0_23", 4, 4},
		{"struct npsw2m_char_7", 4, 4},
		{"struct psw2m_a2_a2", 4, 2},
		{"struct psw2m_2_2", 1, 1},
		{"struct s1", 8, 8},
		{"aligned_struct", 8, 16},
		{"struct outer", 32, 8},
		{"struct inner", 4, 4},
		{"enum E2", 1, 1},
		{"enum E10", 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			typ, ok := doc.Type(tt.ref)
			if !ok {
				t.Fatalf("type %q not declared", tt.ref)
			}
			r, err := e.Compute(typ)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if r.Size != tt.size || r.Align != tt.align {
				t.Errorf("got size %d align %d, want %d and %d", r.Size, r.Align, tt.size, tt.align)
			}
		})
	}
}

func TestFixtureMembers(t *testing.T) {
	doc := loadFixtures(t)
	outer, _ := doc.Type("struct outer")
	r, err := doc.Engine().Compute(outer)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		byte uint64
		bit  uint64
	}{
		{"c", 0, 0},
		{"in", 4, 0},
		{"in.flags", 6, 0},
		{"x", 8, 0},
		{"y", 8, 0},
		{"tail", 16, 0},
		{"p", 24, 0},
	}
	for _, tt := range tests {
		m, ok := r.Lookup(tt.path)
		if !ok {
			t.Errorf("%s not found", tt.path)
			continue
		}
		if m.Offset.ByteOffset != tt.byte || m.Offset.BitOffset != tt.bit {
			t.Errorf("%s: got %d.%d, want %d.%d", tt.path, m.Offset.ByteOffset, m.Offset.BitOffset, tt.byte, tt.bit)
		}
	}
}

func TestFixtureVariables(t *testing.T) {
	doc := loadFixtures(t)
	e := doc.Engine()
	tests := []struct {
		name  string
		size  uint64
		align uint64
	}{
		{"v1", 8, 8},
		{"v2", 8, 8},
		{"v3", 8, 16},
		{"v13", 8, 64},
		{"v10", 8, 8},
		{"buf", 3, 1},
	}
	for _, tt := range tests {
		v, ok := doc.Variable(tt.name)
		if !ok {
			t.Fatalf("variable %s not declared", tt.name)
		}
		r, err := e.ComputeVariable(v)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if r.Size != tt.size || r.Align != tt.align {
			t.Errorf("%s: got size %d align %d, want %d and %d", tt.name, r.Size, r.Align, tt.size, tt.align)
		}
	}
}

func TestEnumerators(t *testing.T) {
	doc := loadFixtures(t)
	seq, _ := doc.Type("enum seq")
	want := []struct {
		name  string
		value string
	}{
		{"zero", "0"}, {"one", "1"}, {"big", "65535"}, {"after", "65536"},
	}
	if len(seq.Enumerators) != len(want) {
		t.Fatalf("got %d enumerators, want %d", len(seq.Enumerators), len(want))
	}
	for i, w := range want {
		e := seq.Enumerators[i]
		if e.Name != w.name || ctype.FormatValue(e.Value) != w.value {
			t.Errorf("enumerator %d: got %s=%s, want %s=%s", i, e.Name, ctype.FormatValue(e.Value), w.name, w.value)
		}
	}

	e10, _ := doc.Type("enum E10")
	r, err := doc.Engine().Compute(e10)
	if err != nil {
		t.Fatal(err)
	}
	if r.Enum.Underlying != ctype.ULong {
		t.Errorf("E10 under gcc policy: got %v, want unsigned long", r.Enum.Underlying)
	}
}

func TestEnumeratorLiterals(t *testing.T) {
	doc, err := Parse([]byte(`types:
  - enum: lits
    enumerators:
      - {name: dec, value: 5}
      - {name: hex, value: 0x10}
      - {name: oct, value: 017}
      - {name: bin, value: "0b11"}
      - {name: neg, value: -1}
      - {name: wide, value: 18446744073709551615ULL}
      - next
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lits, _ := doc.Type("enum lits")
	want := []string{"5", "16", "15", "3", "-1", "18446744073709551615", "18446744073709551616"}
	if len(lits.Enumerators) != len(want) {
		t.Fatalf("got %d enumerators, want %d", len(lits.Enumerators), len(want))
	}
	for i, w := range want {
		e := lits.Enumerators[i]
		if got := ctype.FormatValue(e.Value); got != w {
			t.Errorf("%s: got %s, want %s", e.Name, got, w)
		}
	}

	_, err = Parse([]byte("types:\n  - enum: e\n    enumerators:\n      - {name: a, value: [1]}\n"))
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("sequence value: got %v, want invalid_input", err)
	}
}

func TestResolve(t *testing.T) {
	doc := loadFixtures(t)
	tests := []struct {
		ref  string
		want string
	}{
		{"unsigned  int", "unsigned int"},
		{"struct s1", "struct s1"},
		{"aligned_struct", "aligned_struct"},
		{"struct s1[4]", "struct s1[4]"},
		{"int[]", "int[]"},
		{"char *", "void *"},
	}
	for _, tt := range tests {
		typ, err := doc.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.ref, err)
			continue
		}
		if got := typ.Spelling(); got != tt.want {
			t.Errorf("Resolve(%q): got %s, want %s", tt.ref, got, tt.want)
		}
	}
	if _, err := doc.Resolve("struct missing"); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("missing type: got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"bad yaml", "types: [", errors.KindInvalidInput},
		{"unknown key", "types:\n  - struct: s\n    colour: red\n", errors.KindInvalidInput},
		{"unknown machine", "machine: pdp11\n", errors.KindNotFound},
		{"unknown policy", "policy: msvc\n", errors.KindNotFound},
		{"two kinds", "types:\n  - {struct: s, union: u}\n", errors.KindInvalidInput},
		{"no kind", "types:\n  - {packed: true}\n", errors.KindInvalidInput},
		{"duplicate", "types:\n  - {struct: s}\n  - {struct: s}\n", errors.KindInvalidInput},
		{"unknown member type", "types:\n  - struct: s\n    members:\n      - {name: a, type: widget}\n", errors.KindNotFound},
		{"type and def", "types:\n  - struct: s\n    members:\n      - {name: a, type: int, def: {struct: t}}\n", errors.KindInvalidInput},
		{"bad enumerator value", "types:\n  - enum: e\n    enumerators:\n      - {name: a, value: twelve}\n", errors.KindInvalidInput},
		{"enumerator without name", "types:\n  - enum: e\n    enumerators:\n      - {value: 1}\n", errors.KindInvalidInput},
		{"bad aligned", "types:\n  - {struct: s, aligned: huge}\n", errors.KindInvalidInput},
		{"variable without name", "variables:\n  - {type: int}\n", errors.KindInvalidInput},
		{"duplicate variable", "variables:\n  - {name: v, type: int}\n  - {name: v, type: int}\n", errors.KindInvalidInput},
		{"typedef without name", "types:\n  - {typedef: '', type: int}\n", errors.KindInvalidInput},
		{"typedef of scalar name", "types:\n  - {typedef: int, type: char}\n", errors.KindInvalidInput},
		{"enum with members", "types:\n  - enum: e\n    members:\n      - {name: a, type: int}\n", errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("got %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestParseMinimal(t *testing.T) {
	doc, err := Parse(nil)
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if doc.Machine != ctype.LP64 || doc.Policy != enum.PolicyPreferSigned {
		t.Errorf("defaults: got %s %v", doc.Machine.Name, doc.Policy)
	}

	doc, err = Parse([]byte("machine: linux32\ntypes:\n  - struct: s\n    aligned: true\n    members:\n      - {name: l, type: long}\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, _ := doc.Type("struct s")
	if s.Attrs.Aligned != ctype.AlignedMax {
		t.Errorf("bare aligned: got %d", s.Attrs.Aligned)
	}
	r, err := doc.Engine().Compute(s)
	if err != nil {
		t.Fatal(err)
	}
	if r.Size != 16 || r.Align != 16 {
		t.Errorf("got size %d align %d, want 16 and 16", r.Size, r.Align)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "nope.yaml")); err == nil {
		t.Error("expected error")
	}
}
