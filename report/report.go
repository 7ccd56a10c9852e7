// Package report formats computed layouts as the PRINT and PRINTM lines of
// the attribute probe programs:
//
//	#define PRINT(x) printf(" " #x "\talign: %ld, size: %ld\n", _Alignof(x), sizeof(x));
//	#define PRINTM(m, v, t) PRINT(v.m) \
//	    printf("" #t "\t" #v "." #m "\taddr diff is %ld, offsetof is %ld\n", ...);
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/enum"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/layout"
)

// Print writes the PRINT line for a type or variable.
func Print(w io.Writer, expr string, r *layout.Result) error {
	return PrintValues(w, expr, r.Align, r.Size)
}

// PrintValues writes a PRINT line from raw numbers.
func PrintValues(w io.Writer, expr string, align, size uint64) error {
	_, err := fmt.Fprintf(w, " %s\talign: %d, size: %d\n", expr, align, size)
	return err
}

// PrintConstant writes the PRINT line of an enumerator constant, whose
// type is int unless its value does not fit.
func PrintConstant(w io.Writer, r *enum.Resolver, name string, sel enum.Selection, c ctype.Enumerator) error {
	ct := r.ConstantType(sel, c.Value)
	m := r.Machine()
	return PrintValues(w, name, m.Align(ct), m.Size(ct))
}

// PrintMember writes the two lines of PRINTM(member, varName, typeName)
// for the variable layout v.
func PrintMember(w io.Writer, typeName, varName, member string, v *layout.Result) error {
	m, ok := v.Lookup(member)
	if !ok {
		return errors.NotFound(errors.PhaseReport, "member", varName+"."+member)
	}
	if m.Offset.IsBitField {
		return errors.Unsupported(errors.PhaseReport, []string{varName, member}, "offsetof a bit-field")
	}
	expr := varName + "." + member
	if err := PrintValues(w, expr, m.Align, m.Size); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\t%s\taddr diff is %d, offsetof is %d\n",
		typeName, expr, m.Offset.ByteOffset, m.Offset.ByteOffset)
	return err
}

// Summary writes one line per named member: byte offset, bit offset and
// width for bit-fields, size, alignment, name and declared attributes.
func Summary(w io.Writer, r *layout.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\tsize %d\talign %d\n", r.Type.Spelling(), attribute(r.Type.Attrs), r.Size, r.Align)
	if r.Enum != nil {
		fmt.Fprintf(&b, "  underlying %s\t[%s, %s]\n",
			r.Enum.Underlying, ctype.FormatValue(r.Enum.Min), ctype.FormatValue(r.Enum.Max))
	}
	for _, f := range r.Fields() {
		pos := fmt.Sprintf("%d", f.Offset.ByteOffset)
		if f.Offset.IsBitField {
			pos = fmt.Sprintf("%d.%d:%d", f.Offset.ByteOffset, f.Offset.BitOffset, f.Offset.BitWidth)
		}
		fmt.Fprintf(&b, "  %-10s %-24s size %-4d align %-4d %s%s\n",
			pos, f.Type.Spelling(), f.Size, f.Align, f.Name, attribute(f.Attrs))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// attribute renders a as a GCC attribute suffix, or "" when a is empty.
func attribute(a ctype.Attributes) string {
	if a.IsZero() {
		return ""
	}
	return " __attribute__((" + a.String() + "))"
}
