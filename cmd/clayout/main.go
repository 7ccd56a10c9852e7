// Command clayout prints the layout of C declarations loaded from a YAML
// declaration document.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/decl"
	"github.com/wippyai/clayout/enum"
	"github.com/wippyai/clayout/layout"
	"github.com/wippyai/clayout/report"
	"github.com/wippyai/clayout/storage"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

type options struct {
	declFile string
	typeName string
	member   string
	machine  string
	policy   string
	summary  bool
	bytes    bool
}

func main() {
	var (
		declFile    = flag.String("decl", "", "Path to YAML declaration document")
		typeName    = flag.String("type", "", "Only report this type (e.g. \"struct s\")")
		member      = flag.String("member", "", "Print offsetof for variable members (var.member,var2.member)")
		machine     = flag.String("machine", "", "Override the document's machine (linux64, linux32)")
		policy      = flag.String("policy", "", "Override the enum policy (prefer-signed, gcc)")
		summary     = flag.Bool("summary", false, "Print member offsets for every type")
		bytes       = flag.Bool("bytes", false, "Dump the object image with each integer member set to all ones")
		verbose     = flag.Bool("v", false, "Log layout computation to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *declFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: clayout -decl <file.yaml> [-type name] [-member var.member,...] [-machine name] [-policy name]")
		fmt.Fprintln(os.Stderr, "       clayout -decl <file.yaml> -summary [-bytes]")
		fmt.Fprintln(os.Stderr, "       clayout -decl <file.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = l.Sync() }()
		layout.SetLogger(l.Named("layout"))
		decl.SetLogger(l.Named("decl"))
	}

	opts := options{
		declFile: *declFile,
		typeName: *typeName,
		member:   *member,
		machine:  *machine,
		policy:   *policy,
		summary:  *summary,
		bytes:    *bytes,
	}

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the document and builds an engine honoring the overrides.
func load(opts options) (*decl.Document, *layout.Engine, error) {
	doc, err := decl.Load(opts.declFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load declarations: %w", err)
	}

	var extra []layout.Option
	if opts.machine != "" {
		m, ok := ctype.MachineByName(opts.machine)
		if !ok {
			return nil, nil, fmt.Errorf("unknown machine %q", opts.machine)
		}
		extra = append(extra, layout.WithMachine(m))
	}
	if opts.policy != "" {
		p, ok := enum.ParsePolicy(opts.policy)
		if !ok {
			return nil, nil, fmt.Errorf("unknown enum policy %q", opts.policy)
		}
		extra = append(extra, layout.WithEnumPolicy(p))
	}
	return doc, doc.Engine(extra...), nil
}

func run(w io.Writer, opts options) error {
	doc, eng, err := load(opts)
	if err != nil {
		return err
	}

	types := doc.Types
	if opts.typeName != "" {
		t, ok := doc.Type(opts.typeName)
		if !ok {
			var rerr error
			if t, rerr = doc.Resolve(opts.typeName); rerr != nil {
				return fmt.Errorf("resolve %s: %w", opts.typeName, rerr)
			}
		}
		types = []*ctype.Type{t}
	}

	// A batch error still leaves the other results usable.
	results, batchErr := eng.ComputeAll(context.Background(), types)

	styled := isTerminal(w)
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := printType(w, eng, r, opts, styled); err != nil {
			return err
		}
	}

	if opts.typeName == "" {
		for _, v := range doc.Variables {
			r, err := eng.ComputeVariable(v)
			if err != nil {
				return fmt.Errorf("variable %s: %w", v.Name, err)
			}
			if err := report.Print(w, v.Name, r); err != nil {
				return err
			}
		}
	}

	if opts.member != "" {
		for _, ref := range strings.Split(opts.member, ",") {
			if err := printMember(w, doc, eng, strings.TrimSpace(ref)); err != nil {
				return err
			}
		}
	}

	if batchErr != nil {
		return fmt.Errorf("compute layouts: %w", batchErr)
	}
	return nil
}

func printType(w io.Writer, eng *layout.Engine, r *layout.Result, opts options, styled bool) error {
	name := r.Type.Spelling()
	if opts.summary {
		heading := name
		if styled {
			heading = headingStyle.Render(name)
		}
		if _, err := fmt.Fprintln(w, heading); err != nil {
			return err
		}
		if err := report.Summary(w, r); err != nil {
			return err
		}
		if opts.bytes {
			if err := dumpBytes(w, r); err != nil {
				return err
			}
		}
		return nil
	}

	if err := report.Print(w, name, r); err != nil {
		return err
	}
	if r.Enum != nil {
		for _, c := range r.Type.Strip().Enumerators {
			if err := report.PrintConstant(w, eng.Enums(), c.Name, *r.Enum, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// dumpBytes prints the image of r once per integer member, with only that
// member set to all ones.
func dumpBytes(w io.Writer, r *layout.Result) error {
	im := storage.New(r)
	for _, f := range r.Fields() {
		if f.Nested != nil || !f.Type.IsInteger() {
			continue
		}
		im.Reset()
		if err := im.SetAllOnes(f.Name); err != nil {
			return fmt.Errorf("%s.%s: %w", r.Type.Spelling(), f.Name, err)
		}
		if _, err := fmt.Fprintf(w, "  %-24s %s\n", f.Name, hex.EncodeToString(im.Bytes())); err != nil {
			return err
		}
	}
	return nil
}

// printMember handles a "var.member" reference.
func printMember(w io.Writer, doc *decl.Document, eng *layout.Engine, ref string) error {
	varName, member, ok := strings.Cut(ref, ".")
	if !ok || member == "" {
		return fmt.Errorf("member reference %q: want var.member", ref)
	}
	v, ok := doc.Variable(varName)
	if !ok {
		return fmt.Errorf("variable %q not declared", varName)
	}
	r, err := eng.ComputeVariable(v)
	if err != nil {
		return fmt.Errorf("variable %s: %w", varName, err)
	}
	return report.PrintMember(w, v.Type.Spelling(), varName, member, r)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
