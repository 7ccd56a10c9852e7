package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

const fixtures = "../../decl/testdata/fixtures.yaml"

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want string
	}{
		{
			name: "struct",
			opts: options{typeName: "struct s4"},
			want: " struct s4\talign: 4, size: 8\n",
		},
		{
			name: "packed enum and constant",
			opts: options{typeName: "enum E2"},
			want: " enum E2\talign: 1, size: 1\n a2\talign: 4, size: 4\n",
		},
		{
			name: "member",
			opts: options{typeName: "struct s1", member: "v1.m2"},
			want: " struct s1\talign: 8, size: 8\n" +
				" v1.m2\talign: 1, size: 1\n" +
				"struct s1\tv1.m2\taddr diff is 1, offsetof is 1\n",
		},
		{
			name: "ilp32 override",
			opts: options{typeName: "long", machine: "linux32"},
			want: " long\talign: 4, size: 4\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.declFile = fixtures
			var buf bytes.Buffer
			if err := run(&buf, tt.opts); err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output:\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestRunVariables(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, options{declFile: fixtures}); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		" v2\talign: 8, size: 8\n",
		" v3\talign: 16, size: 8\n",
		" v13\talign: 64, size: 8\n",
		" buf\talign: 1, size: 3\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunBytes(t *testing.T) {
	var buf bytes.Buffer
	opts := options{declFile: fixtures, typeName: "struct psw2m_2_2", summary: true, bytes: true}
	if err := run(&buf, opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		fmt.Sprintf("  %-24s %s\n", "first", "03"),
		fmt.Sprintf("  %-24s %s\n", "second", "0c"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{"missing file", options{declFile: "testdata/none.yaml"}},
		{"unknown machine", options{declFile: fixtures, machine: "vax"}},
		{"unknown policy", options{declFile: fixtures, policy: "msvc"}},
		{"unknown type", options{declFile: fixtures, typeName: "struct nope"}},
		{"bad member ref", options{declFile: fixtures, typeName: "struct s1", member: "v1"}},
		{"unknown variable", options{declFile: fixtures, typeName: "struct s1", member: "v99.m1"}},
		{"unknown member", options{declFile: fixtures, typeName: "struct s1", member: "v1.m9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := run(&buf, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInteractiveModel(t *testing.T) {
	m := newInteractiveModel(options{declFile: fixtures})
	msg := m.load()
	loaded, ok := msg.(loadedMsg)
	if !ok || loaded.err != nil {
		t.Fatalf("load: %#v", msg)
	}
	m.Update(loaded)
	if len(m.entries) != 18 {
		t.Fatalf("entries: got %d, want 18", len(m.entries))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 1 {
		t.Errorf("selected: got %d, want 1", m.selected)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateDetail {
		t.Fatalf("state: got %d, want detail", m.state)
	}
	if !strings.Contains(m.detail, "struct npsw2m_0_23") {
		t.Errorf("detail does not describe the selection:\n%s", m.detail)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateList {
		t.Errorf("state: got %d, want list", m.state)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if m.state != stateFilter {
		t.Fatalf("state: got %d, want filter", m.state)
	}
	m.filter.SetValue("E10")
	if vis := m.visible(); len(vis) != 1 || vis[0].name != "enum E10" {
		t.Errorf("visible: got %v", vis)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateList || m.filter.Value() != "E10" {
		t.Errorf("enter should keep the filter: state %d value %q", m.state, m.filter.Value())
	}
}
