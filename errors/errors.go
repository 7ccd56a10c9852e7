package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // attribute merging
	PhaseBitfield Phase = "bitfield" // bit-field allocation
	PhaseLayout   Phase = "layout"   // aggregate layout
	PhaseEnum     Phase = "enum"     // underlying type selection
	PhaseLoad     Phase = "load"     // declaration document loading
	PhaseReport   Phase = "report"   // result formatting
)

// Kind categorizes the error
type Kind string

const (
	KindBitfieldWidthOverflow    Kind = "bitfield_width_overflow"
	KindInvalidAlignment         Kind = "invalid_alignment"
	KindEnumRangeUnrepresentable Kind = "enum_range_unrepresentable"
	KindInvalidInput             Kind = "invalid_input"
	KindNotFound                 Kind = "not_found"
	KindUnsupported              Kind = "unsupported"
	KindOverflow                 Kind = "overflow"
)

// Error is the structured error returned by every package of the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	CType  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.CType != "" {
		b.WriteString(": type ")
		b.WriteString(e.CType)
	}

	if e.Detail != "" {
		if e.CType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// WithPath returns a copy of e with prefix prepended to its path.
func (e *Error) WithPath(prefix ...string) *Error {
	c := *e
	c.Path = append(append([]string{}, prefix...), e.Path...)
	return &c
}

// IsKind reports whether any *Error in err's chain has the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// CType sets the C type spelling
func (b *Builder) CType(t string) *Builder {
	b.err.CType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// BitfieldWidthOverflow reports a bit-field wider than its backing type
func BitfieldWidthOverflow(path []string, ctype string, width, maxWidth uint64) *Error {
	return &Error{
		Phase:  PhaseBitfield,
		Kind:   KindBitfieldWidthOverflow,
		Path:   path,
		CType:  ctype,
		Detail: fmt.Sprintf("width %d exceeds %d bits", width, maxWidth),
		Value:  width,
	}
}

// InvalidAlignment reports an aligned(N) value that is not a power of two
// or is above the machine ceiling
func InvalidAlignment(path []string, value, ceiling uint64) *Error {
	detail := fmt.Sprintf("aligned(%d) is not a power of two", value)
	if value != 0 && value&(value-1) == 0 {
		detail = fmt.Sprintf("aligned(%d) exceeds maximum alignment %d", value, ceiling)
	}
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidAlignment,
		Path:   path,
		Detail: detail,
		Value:  value,
	}
}

// EnumRangeUnrepresentable reports an enumerator range no candidate integer
// type can hold
func EnumRangeUnrepresentable(name, minValue, maxValue string) *Error {
	return &Error{
		Phase:  PhaseEnum,
		Kind:   KindEnumRangeUnrepresentable,
		CType:  name,
		Detail: fmt.Sprintf("range [%s, %s] fits no integer type", minValue, maxValue),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a declaration parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// DeclFailure is a single failed declaration in a batch
type DeclFailure struct {
	Err  error
	Name string
}

// BatchError is returned when some declarations of a batch could not be laid out.
// The remaining declarations are still computed; callers decide whether to
// skip, report or halt.
type BatchError struct {
	Failures []DeclFailure
}

// NewBatchError builds a batch error from a name-to-error map, ordered by name
func NewBatchError(failed map[string]error) *BatchError {
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &BatchError{
		Failures: make([]DeclFailure, 0, len(names)),
	}
	for _, name := range names {
		result.Failures = append(result.Failures, DeclFailure{Name: name, Err: failed[name]})
	}
	return result
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 0 {
		return "[layout] batch: no failures recorded"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d declaration(s) failed:\n", len(e.Failures)))

	// Group by kind so repeated structural problems read as one block
	byKind := make(map[Kind][]DeclFailure)
	var kindOrder []Kind
	for _, f := range e.Failures {
		k := Kind("other")
		var se *Error
		if errors.As(f.Err, &se) {
			k = se.Kind
		}
		if _, exists := byKind[k]; !exists {
			kindOrder = append(kindOrder, k)
		}
		byKind[k] = append(byKind[k], f)
	}

	for _, k := range kindOrder {
		b.WriteString("\n  ")
		b.WriteString(string(k))
		b.WriteString(":\n")
		for _, f := range byKind[k] {
			b.WriteString("    - ")
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(f.Err.Error())
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *BatchError) Is(target error) bool {
	_, ok := target.(*BatchError)
	return ok
}

// Unwrap exposes the individual failures to errors.Is/As
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
