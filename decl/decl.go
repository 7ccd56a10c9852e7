package decl

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/enum"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/layout"
)

// Document is a loaded declaration document.
type Document struct {
	Machine   *ctype.Machine
	scope     *scope
	vars      map[string]*ctype.Variable
	Types     []*ctype.Type
	Variables []*ctype.Variable
	Policy    enum.Policy
}

// Load reads and parses a declaration document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read "+path)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	Logger().Debug("loaded declarations",
		zap.String("path", path),
		zap.String("machine", doc.Machine.Name),
		zap.Int("types", len(doc.Types)),
		zap.Int("variables", len(doc.Variables)),
	)
	return doc, nil
}

// Parse parses a YAML declaration document.
func Parse(data []byte) (*Document, error) {
	var raw document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("declarations", err)
	}

	m, ok := ctype.MachineByName(raw.Machine)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "machine", raw.Machine)
	}
	policy := enum.PolicyPreferSigned
	if raw.Policy != "" {
		if policy, ok = enum.ParsePolicy(raw.Policy); !ok {
			return nil, errors.NotFound(errors.PhaseLoad, "enum policy", raw.Policy)
		}
	}

	s := newScope()
	doc := &Document{
		Machine: m,
		Policy:  policy,
		scope:   s,
		vars:    make(map[string]*ctype.Variable),
	}

	// Declare every tag first so members may refer forward.
	nodes := make([]*ctype.Type, len(raw.Types))
	for i := range raw.Types {
		spec := &raw.Types[i]
		kind, name, count := spec.kind()
		path := []string{"types[" + strconv.Itoa(i) + "]"}
		if count != 1 {
			return nil, errors.InvalidInput(errors.PhaseLoad, path, "exactly one of struct, union, enum or typedef must be set")
		}
		t, err := s.declare(kind, name, path)
		if err != nil {
			return nil, err
		}
		nodes[i] = t
	}
	for i := range raw.Types {
		path := []string{nodes[i].Spelling()}
		if err := s.define(nodes[i], &raw.Types[i], path); err != nil {
			return nil, err
		}
		doc.Types = append(doc.Types, nodes[i])
	}

	for i := range raw.Variables {
		vs := &raw.Variables[i]
		if vs.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, []string{"variables[" + strconv.Itoa(i) + "]"}, "variable without name")
		}
		if _, dup := doc.vars[vs.Name]; dup {
			return nil, errors.InvalidInput(errors.PhaseLoad, []string{vs.Name}, "duplicate variable")
		}
		t, err := s.ref(vs.Type, vs.Def, vs.Len, []string{vs.Name})
		if err != nil {
			return nil, err
		}
		v := &ctype.Variable{Name: vs.Name, Type: t, Attrs: vs.Aligned.attrs(vs.Packed)}
		doc.vars[v.Name] = v
		doc.Variables = append(doc.Variables, v)
	}
	return doc, nil
}

// Type returns a declared type by spelling, such as "struct s" or a
// typedef name.
func (d *Document) Type(name string) (*ctype.Type, bool) {
	t, ok := d.scope.names[normalize(name)]
	return t, ok
}

// Variable returns a declared variable.
func (d *Document) Variable(name string) (*ctype.Variable, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// Resolve resolves any type reference valid in the document, including
// scalars, pointers and arrays.
func (d *Document) Resolve(ref string) (*ctype.Type, error) {
	return d.scope.lookup(ref, nil)
}

// Engine returns a layout engine configured for the document's machine
// and enum policy.
func (d *Document) Engine(opts ...layout.Option) *layout.Engine {
	base := []layout.Option{layout.WithMachine(d.Machine), layout.WithEnumPolicy(d.Policy)}
	return layout.New(append(base, opts...)...)
}

// scope resolves type references.
type scope struct {
	names   map[string]*ctype.Type
	scalars map[ctype.Scalar]*ctype.Type
}

func newScope() *scope {
	return &scope{
		names:   make(map[string]*ctype.Type),
		scalars: make(map[ctype.Scalar]*ctype.Type),
	}
}

func key(kind ctype.Kind, name string) string {
	if kind == ctype.KindTypedef {
		return name
	}
	return kind.String() + " " + name
}

func normalize(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func (s *scope) declare(kind ctype.Kind, name string, path []string) (*ctype.Type, error) {
	t := &ctype.Type{Kind: kind, Name: name}
	if name == "" {
		if kind == ctype.KindTypedef {
			return nil, errors.InvalidInput(errors.PhaseLoad, path, "typedef without name")
		}
		return t, nil
	}
	if _, ok := ctype.ParseScalar(name); ok && kind == ctype.KindTypedef {
		return nil, errors.InvalidInput(errors.PhaseLoad, path, "typedef redefines scalar "+name)
	}
	k := key(kind, name)
	if _, dup := s.names[k]; dup {
		return nil, errors.InvalidInput(errors.PhaseLoad, path, "duplicate declaration of "+k)
	}
	s.names[k] = t
	return t, nil
}

func (s *scope) define(t *ctype.Type, spec *typeSpec, path []string) error {
	t.Attrs = spec.Aligned.attrs(spec.Packed)

	switch t.Kind {
	case ctype.KindStruct, ctype.KindUnion:
		if len(spec.Enumerators) > 0 || spec.Type != "" {
			return errors.InvalidInput(errors.PhaseLoad, path, t.Kind.String()+" takes members only")
		}
		t.Members = make([]ctype.Member, 0, len(spec.Members))
		for i := range spec.Members {
			m, err := s.member(&spec.Members[i], path)
			if err != nil {
				return err
			}
			t.Members = append(t.Members, m)
		}
	case ctype.KindEnum:
		if len(spec.Members) > 0 {
			return errors.InvalidInput(errors.PhaseLoad, path, "enum takes enumerators only")
		}
		es, err := enumerators(spec.Enumerators, path)
		if err != nil {
			return err
		}
		t.Enumerators = es
	case ctype.KindTypedef:
		// Only aligned carries over to a typedef.
		t.Attrs.Packed = false
		elem, err := s.ref(spec.Type, spec.Def, spec.Len, path)
		if err != nil {
			return err
		}
		t.Elem = elem
	}
	return nil
}

func (s *scope) member(ms *memberSpec, path []string) (ctype.Member, error) {
	mpath := append(append([]string{}, path...), ms.Name)
	t, err := s.ref(ms.Type, ms.Def, ms.Len, mpath)
	if err != nil {
		return ctype.Member{}, err
	}
	m := ctype.Field(ms.Name, t)
	if ms.Bits != nil {
		m = ctype.BitField(ms.Name, t, *ms.Bits)
	}
	return m.With(ms.Aligned.attrs(ms.Packed)), nil
}

// ref resolves a member, typedef or variable type: an inline definition or
// a reference, optionally wrapped in an array of length n.
func (s *scope) ref(name string, def *typeSpec, n *int64, path []string) (*ctype.Type, error) {
	var (
		t   *ctype.Type
		err error
	)
	switch {
	case def != nil && name != "":
		return nil, errors.InvalidInput(errors.PhaseLoad, path, "type and def are exclusive")
	case def != nil:
		t, err = s.inline(def, path)
	default:
		t, err = s.lookup(name, path)
	}
	if err != nil {
		return nil, err
	}
	if n != nil {
		t = ctype.Array(t, *n)
	}
	return t, nil
}

func (s *scope) inline(spec *typeSpec, path []string) (*ctype.Type, error) {
	kind, name, count := spec.kind()
	if count != 1 {
		return nil, errors.InvalidInput(errors.PhaseLoad, path, "def needs exactly one of struct, union, enum or typedef")
	}
	t, err := s.declare(kind, name, path)
	if err != nil {
		return nil, err
	}
	if err := s.define(t, spec, path); err != nil {
		return nil, err
	}
	return t, nil
}

var arraySuffix = regexp.MustCompile(`^(.+?)\s*\[\s*(\d*)\s*\]$`)

func (s *scope) lookup(name string, path []string) (*ctype.Type, error) {
	name = normalize(name)
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, path, "missing type")
	}
	if strings.HasSuffix(name, "*") {
		return s.scalar(ctype.Pointer), nil
	}
	if m := arraySuffix.FindStringSubmatch(name); m != nil {
		elem, err := s.lookup(m[1], path)
		if err != nil {
			return nil, err
		}
		n := int64(-1)
		if m[2] != "" {
			if n, err = strconv.ParseInt(m[2], 10, 64); err != nil {
				return nil, errors.InvalidInput(errors.PhaseLoad, path, "array length "+m[2])
			}
		}
		return ctype.Array(elem, n), nil
	}
	if sc, ok := ctype.ParseScalar(name); ok {
		return s.scalar(sc), nil
	}
	if t, ok := s.names[name]; ok {
		return t, nil
	}
	return nil, errors.NotFound(errors.PhaseLoad, "type", name).WithPath(path...)
}

func (s *scope) scalar(sc ctype.Scalar) *ctype.Type {
	if t, ok := s.scalars[sc]; ok {
		return t
	}
	t := ctype.NewScalar(sc)
	s.scalars[sc] = t
	return t
}

// enumerators decodes a list of names or {name, value} maps. A missing
// value is one more than the previous enumerator, starting at 0.
func enumerators(nodes []yaml.Node, path []string) ([]ctype.Enumerator, error) {
	out := make([]ctype.Enumerator, 0, len(nodes))
	next := uint256.NewInt(0)
	for i := range nodes {
		node := &nodes[i]
		var es enumeratorSpec
		switch node.Kind {
		case yaml.ScalarNode:
			es.Name = node.Value
		case yaml.MappingNode:
			if err := node.Decode(&es); err != nil {
				return nil, errors.ParseFailed("enumerator", err)
			}
		default:
			return nil, errors.InvalidInput(errors.PhaseLoad, path, "enumerator must be a name or a map, line "+strconv.Itoa(node.Line))
		}
		if es.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, path, "enumerator without name, line "+strconv.Itoa(node.Line))
		}
		v := next.Clone()
		if es.Value.set {
			parsed, err := ctype.ParseValue(es.Value.lit)
			if err != nil {
				if se, ok := err.(*errors.Error); ok {
					return nil, se.WithPath(append(append([]string{}, path...), es.Name)...)
				}
				return nil, err
			}
			v = parsed
		}
		out = append(out, ctype.Enumerator{Name: es.Name, Value: v})
		next = new(uint256.Int).Add(v, uint256.NewInt(1))
	}
	return out, nil
}
