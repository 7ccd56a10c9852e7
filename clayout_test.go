package clayout_test

import (
	"context"
	"testing"

	"github.com/wippyai/clayout"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/layout"
	"github.com/wippyai/clayout/storage"
)

var (
	_ clayout.Object = (*storage.Image)(nil)
	_ clayout.Layout = (*layout.Result)(nil)
)

func TestComputeFile(t *testing.T) {
	results, err := clayout.ComputeFile(context.Background(), "decl/testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("ComputeFile: %v", err)
	}
	if len(results) != 12 {
		t.Fatalf("results: got %d, want 12", len(results))
	}
	r := results[0]
	if r.Size != 8 || r.Align != 4 {
		t.Errorf("%s: got size %d align %d, want 8/4", r.Type.Spelling(), r.Size, r.Align)
	}

	var obj clayout.Object = storage.New(r)
	if err := obj.SetAllOnes("second"); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 0xff, 0xff, 0x7f, 0}
	for i, b := range obj.Bytes() {
		if b != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, b, want[i])
		}
	}
}

func TestComputeFileMachine(t *testing.T) {
	results, err := clayout.ComputeFile(context.Background(), "decl/testdata/fixtures.yaml",
		layout.WithMachine(ctype.ILP32))
	if err != nil {
		t.Fatalf("ComputeFile: %v", err)
	}
	// struct outer holds a long long and a pointer.
	for _, r := range results {
		if r.Type.Spelling() == "struct outer" && r.Align != 4 {
			t.Errorf("struct outer on ILP32: got align %d, want 4", r.Align)
		}
	}
}

func TestComputeFileMissing(t *testing.T) {
	if _, err := clayout.ComputeFile(context.Background(), "decl/testdata/missing.yaml"); err == nil {
		t.Error("expected error")
	}
}
