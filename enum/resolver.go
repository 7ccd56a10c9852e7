package enum

import (
	"github.com/holiman/uint256"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

// Selection is the resolved underlying type of an enum.
type Selection struct {
	Min        *uint256.Int
	Max        *uint256.Int
	machine    *ctype.Machine
	Size       uint64
	Align      uint64
	Underlying ctype.Scalar
	Signed     bool
	Packed     bool
}

// Resolver picks underlying types for enums.
type Resolver struct {
	machine *ctype.Machine
	policy  Policy
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMachine sets the target ABI. The default is ctype.LP64.
func WithMachine(m *ctype.Machine) Option {
	return func(r *Resolver) {
		if m != nil {
			r.machine = m
		}
	}
}

// WithPolicy sets the candidate policy. The default is PolicyPreferSigned.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{machine: ctype.LP64, policy: PolicyPreferSigned}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Machine returns the target ABI of r.
func (r *Resolver) Machine() *ctype.Machine {
	return r.machine
}

// Policy returns the candidate policy of r.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve selects the first candidate whose range contains [lo, hi].
func (r *Resolver) Resolve(lo, hi *uint256.Int, packed bool) (Selection, error) {
	return r.resolve("enum", lo, hi, packed)
}

// ResolveEnum computes the enumerator range of t and resolves it with the
// packed attribute of t. An enum without enumerators has the range [0, 0].
func (r *Resolver) ResolveEnum(t *ctype.Type) (Selection, error) {
	if t == nil || t.Kind != ctype.KindEnum {
		return Selection{}, errors.InvalidInput(errors.PhaseEnum, nil, "not an enum type")
	}
	lo, hi, err := Range(t.Enumerators)
	if err != nil {
		return Selection{}, err
	}
	return r.resolve(t.Spelling(), lo, hi, t.Attrs.Packed)
}

func (r *Resolver) resolve(name string, lo, hi *uint256.Int, packed bool) (Selection, error) {
	if lo == nil || hi == nil {
		return Selection{}, errors.InvalidInput(errors.PhaseEnum, nil, "missing range bound")
	}
	if lo.Sgt(hi) {
		return Selection{}, errors.New(errors.PhaseEnum, errors.KindInvalidInput).
			CType(name).
			Detail("min %s above max %s", ctype.FormatValue(lo), ctype.FormatValue(hi)).
			Build()
	}

	for _, s := range r.policy.candidates(packed, lo.Sign() < 0) {
		if r.machine.Contains(s, lo) && r.machine.Contains(s, hi) {
			return Selection{
				Min:        lo.Clone(),
				Max:        hi.Clone(),
				machine:    r.machine,
				Size:       r.machine.Size(s),
				Align:      r.machine.Align(s),
				Underlying: s,
				Signed:     s.IsSigned(),
				Packed:     packed,
			}, nil
		}
	}
	return Selection{}, errors.EnumRangeUnrepresentable(name, ctype.FormatValue(lo), ctype.FormatValue(hi))
}

// Range returns the smallest and largest enumerator values.
func Range(enumerators []ctype.Enumerator) (lo, hi *uint256.Int, err error) {
	lo, hi = new(uint256.Int), new(uint256.Int)
	for i, e := range enumerators {
		if e.Value == nil {
			return nil, nil, errors.InvalidInput(errors.PhaseEnum, []string{e.Name}, "enumerator has no value")
		}
		if i == 0 || e.Value.Slt(lo) {
			lo.Set(e.Value)
		}
		if i == 0 || e.Value.Sgt(hi) {
			hi.Set(e.Value)
		}
	}
	return lo, hi, nil
}

// ConstantType is the type of an enumerator constant: int when the value
// fits int, otherwise the underlying type.
func (r *Resolver) ConstantType(sel Selection, v *uint256.Int) ctype.Scalar {
	if r.machine.Contains(ctype.Int, v) {
		return ctype.Int
	}
	return sel.Underlying
}
