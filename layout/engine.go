package layout

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/enum"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/internal/abi"
	"github.com/wippyai/clayout/internal/attr"
	"github.com/wippyai/clayout/internal/bitfield"
)

// Engine computes layouts for one target machine and enum policy.
// It is safe for concurrent use.
type Engine struct {
	machine *ctype.Machine
	enums   *enum.Resolver
	logger  *zap.Logger
	cache   map[*ctype.Type]*Result
	policy  enum.Policy
	mu      sync.RWMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithMachine sets the target ABI. The default is ctype.LP64.
func WithMachine(m *ctype.Machine) Option {
	return func(e *Engine) {
		if m != nil {
			e.machine = m
		}
	}
}

// WithEnumPolicy sets the enum underlying-type policy.
func WithEnumPolicy(p enum.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		machine: ctype.LP64,
		policy:  enum.PolicyPreferSigned,
		logger:  Logger(),
		cache:   make(map[*ctype.Type]*Result),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.enums = enum.NewResolver(enum.WithMachine(e.machine), enum.WithPolicy(e.policy))
	return e
}

// Machine returns the target ABI.
func (e *Engine) Machine() *ctype.Machine {
	return e.machine
}

// Enums returns the engine's enum resolver.
func (e *Engine) Enums() *enum.Resolver {
	return e.enums
}

// Compute returns the layout of t. Repeated calls for the same node return
// the same cached result.
func (e *Engine) Compute(t *ctype.Type) (*Result, error) {
	c := &computation{engine: e, visiting: make(map[*ctype.Type]bool)}
	var root []string
	if t != nil {
		root = []string{t.Spelling()}
	}
	return c.compute(t, root)
}

// ComputeVariable returns the layout of an object: its type's layout with
// the variable's alignment attachment combined by maximum. sizeof v equals
// sizeof its type.
func (e *Engine) ComputeVariable(v *ctype.Variable) (*Result, error) {
	if v == nil || v.Type == nil {
		return nil, errors.InvalidInput(errors.PhaseLayout, nil, "variable without type")
	}
	base, err := e.Compute(v.Type)
	if err != nil {
		return nil, err
	}
	explicit, err := attr.Normalize(e.machine, v.Attrs.Aligned, []string{v.Name})
	if err != nil {
		return nil, err
	}
	r := *base
	r.Name = v.Name
	r.Align = abi.MaxU64(base.Align, explicit)
	return &r, nil
}

// Cached returns the number of cached results.
func (e *Engine) Cached() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Engine) lookup(t *ctype.Type) (*Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.cache[t]
	return r, ok
}

// store keeps the first result stored for t so identity is stable under
// concurrent computation.
func (e *Engine) store(t *ctype.Type, r *Result) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.cache[t]; ok {
		return prev
	}
	e.cache[t] = r
	return r
}

// computation is the state of one top-level Compute call.
type computation struct {
	engine   *Engine
	visiting map[*ctype.Type]bool
}

func (c *computation) compute(t *ctype.Type, path []string) (*Result, error) {
	e := c.engine
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseLayout, path, "missing type")
	}
	if r, ok := e.lookup(t); ok {
		e.logger.Debug("layout cache hit", zap.String("type", t.Spelling()))
		return r, nil
	}
	if c.visiting[t] {
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Path(path...).
			CType(t.Spelling()).
			Detail("type contains itself").
			Build()
	}
	c.visiting[t] = true
	defer delete(c.visiting, t)

	var (
		r   *Result
		err error
	)
	switch t.Kind {
	case ctype.KindScalar:
		r, err = c.computeScalar(t, path)
	case ctype.KindStruct, ctype.KindUnion:
		r, err = c.computeAggregate(t, path)
	case ctype.KindEnum:
		r, err = c.computeEnum(t, path)
	case ctype.KindArray:
		r, err = c.computeArray(t, path)
	case ctype.KindTypedef:
		r, err = c.computeTypedef(t, path)
	default:
		err = errors.Unsupported(errors.PhaseLayout, path, "type kind "+t.Kind.String())
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("computed layout",
		zap.String("type", t.Spelling()),
		zap.Uint64("size", r.Size),
		zap.Uint64("align", r.Align),
		zap.Int("members", len(r.Members)),
	)
	return e.store(t, r), nil
}

func (c *computation) computeScalar(t *ctype.Type, path []string) (*Result, error) {
	m := c.engine.machine
	if t.Scalar > ctype.Pointer {
		return nil, errors.Unsupported(errors.PhaseLayout, path, "scalar "+t.Scalar.String())
	}
	explicit, err := attr.Normalize(m, t.Attrs.Aligned, path)
	if err != nil {
		return nil, err
	}
	return &Result{
		Type:  t,
		Size:  m.Size(t.Scalar),
		Align: abi.MaxU64(m.Align(t.Scalar), explicit),
	}, nil
}

func (c *computation) computeEnum(t *ctype.Type, path []string) (*Result, error) {
	sel, err := c.engine.enums.ResolveEnum(t)
	if err != nil {
		if se, ok := err.(*errors.Error); ok {
			return nil, se.WithPath(path...)
		}
		return nil, err
	}
	explicit, err := attr.Normalize(c.engine.machine, t.Attrs.Aligned, path)
	if err != nil {
		return nil, err
	}
	return &Result{
		Type:  t,
		Enum:  &sel,
		Size:  sel.Size,
		Align: abi.MaxU64(sel.Align, explicit),
	}, nil
}

func (c *computation) computeArray(t *ctype.Type, path []string) (*Result, error) {
	elem, err := c.compute(t.Elem, path)
	if err != nil {
		return nil, err
	}
	if elem.Size%elem.Align != 0 {
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Path(path...).
			CType(t.Spelling()).
			Detail("alignment of array elements is greater than element size").
			Build()
	}
	size := uint64(0)
	if t.Len > 0 {
		var ok bool
		size, ok = abi.SafeMulU64(elem.Size, uint64(t.Len))
		if !ok {
			return nil, errors.Overflow(errors.PhaseLayout, path, "array size overflows")
		}
	}
	return &Result{Type: t, Size: size, Align: elem.Align}, nil
}

// computeTypedef merges the typedef's aligned attachment into the aliased
// layout. sizeof is unchanged.
func (c *computation) computeTypedef(t *ctype.Type, path []string) (*Result, error) {
	base, err := c.compute(t.Elem, path)
	if err != nil {
		return nil, err
	}
	explicit, err := attr.Normalize(c.engine.machine, t.Attrs.Aligned, path)
	if err != nil {
		return nil, err
	}
	r := *base
	r.Type = t
	r.Align = abi.MaxU64(base.Align, explicit)
	return &r, nil
}

func (c *computation) computeAggregate(t *ctype.Type, path []string) (*Result, error) {
	m := c.engine.machine
	typeAlign, err := attr.Normalize(m, t.Attrs.Aligned, path)
	if err != nil {
		return nil, err
	}

	alloc := bitfield.New(t.Kind)
	r := &Result{Type: t, Members: make([]MemberLayout, 0, len(t.Members))}

	for i, mem := range t.Members {
		mpath := memberPath(path, mem)
		if mem.Type == nil {
			return nil, errors.InvalidInput(errors.PhaseLayout, mpath, "member without type")
		}

		var ml MemberLayout
		if mem.IsBitField {
			ml, err = c.placeBitField(alloc, t, mem, mpath)
		} else {
			last := i == len(t.Members)-1
			ml, err = c.placeMember(alloc, t, mem, mpath, last)
		}
		if err != nil {
			return nil, err
		}
		r.Members = append(r.Members, ml)
	}

	alloc.Raise(typeAlign)
	r.Size = alloc.Size()
	r.Align = alloc.Align()
	return r, nil
}

func (c *computation) placeMember(alloc *bitfield.Allocator, t *ctype.Type, mem ctype.Member, path []string, last bool) (MemberLayout, error) {
	if u := mem.Type.Strip(); u != nil && u.Kind == ctype.KindArray && u.Len < 0 {
		if t.Kind != ctype.KindStruct || !last || len(t.Members) < 2 {
			return MemberLayout{}, errors.InvalidInput(errors.PhaseLayout, path,
				"flexible array member must be the last member of a struct with other members")
		}
	}

	sub, err := c.compute(mem.Type, path)
	if err != nil {
		return MemberLayout{}, err
	}
	eff, err := attr.Resolve(c.engine.machine, attr.Input{
		Natural:       sub.Align,
		ContextPacked: t.Attrs.Packed,
		Attachments:   []ctype.Attributes{mem.Attrs},
		Path:          path,
	})
	if err != nil {
		return MemberLayout{}, err
	}
	off, err := alloc.PlaceBytes(sub.Size, eff.Align, path)
	if err != nil {
		return MemberLayout{}, err
	}

	var nested *Result
	if sub.Type.Strip().Kind.IsAggregate() {
		nested = sub
	}
	return MemberLayout{
		Type:      mem.Type,
		Nested:    nested,
		Name:      mem.Name,
		Offset:    Offset{ByteOffset: off},
		Size:      sub.Size,
		Align:     eff.Align,
		Attrs:     mem.Attrs,
		Anonymous: mem.IsAnonymous(),
		Signed:    signed(sub),
	}, nil
}

func (c *computation) placeBitField(alloc *bitfield.Allocator, t *ctype.Type, mem ctype.Member, path []string) (MemberLayout, error) {
	if !mem.Type.IsInteger() {
		return MemberLayout{}, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Path(path...).
			CType(mem.Type.Spelling()).
			Detail("bit-field has non-integer type").
			Build()
	}
	if mem.BitWidth == 0 && mem.Name != "" {
		return MemberLayout{}, errors.InvalidInput(errors.PhaseLayout, path, "zero-width bit-field must be unnamed")
	}

	sub, err := c.compute(mem.Type, path)
	if err != nil {
		return MemberLayout{}, err
	}
	u := mem.Type.Strip()
	// The storage unit follows the backing type, not a typedef's aligned.
	natural := sub.Align
	switch {
	case u.Kind == ctype.KindScalar:
		natural = c.engine.machine.Align(u.Scalar)
	case sub.Enum != nil:
		natural = sub.Enum.Align
	}

	eff, err := attr.Resolve(c.engine.machine, attr.Input{
		Natural:       sub.Align,
		ContextPacked: t.Attrs.Packed,
		BitField:      true,
		ZeroWidth:     mem.BitWidth == 0,
		Attachments:   []ctype.Attributes{mem.Attrs},
		Path:          path,
	})
	if err != nil {
		return MemberLayout{}, err
	}

	bit, err := alloc.PlaceBits(bitfield.Field{
		CType:     mem.Type.Spelling(),
		Path:      path,
		UnitBits:  sub.Size * abi.BitsPerByte,
		UnitAlign: natural,
		Width:     mem.BitWidth,
		Align:     eff.Align,
		Explicit:  eff.Explicit,
		Packed:    eff.Packed,
		Bool:      u.Kind == ctype.KindScalar && u.Scalar == ctype.Bool,
	})
	if err != nil {
		return MemberLayout{}, err
	}
	return MemberLayout{
		Type: mem.Type,
		Name: mem.Name,
		Offset: Offset{
			ByteOffset: bit / abi.BitsPerByte,
			BitOffset:  bit % abi.BitsPerByte,
			BitWidth:   mem.BitWidth,
			IsBitField: true,
		},
		Size:   sub.Size,
		Align:  eff.Align,
		Attrs:  mem.Attrs,
		Signed: signed(sub),
	}, nil
}

func signed(r *Result) bool {
	if r.Enum != nil {
		return r.Enum.Signed
	}
	u := r.Type.Strip()
	return u.Kind == ctype.KindScalar && u.Scalar.IsInteger() && u.Scalar.IsSigned()
}

func memberPath(path []string, mem ctype.Member) []string {
	name := mem.Name
	if name == "" {
		name = "<anonymous>"
	}
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
