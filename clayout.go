package clayout

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/wippyai/clayout/decl"
	"github.com/wippyai/clayout/layout"
)

// Object is the byte image of a laid-out C object.
type Object interface {
	Bytes() []byte
	Get(path string) (*uint256.Int, error)
	Set(path string, v *uint256.Int) error
	SetAllOnes(path string) error
	Reset()
}

// Layout describes the placement of a computed declaration.
type Layout interface {
	Lookup(path string) (layout.MemberLayout, bool)
	Fields() []layout.MemberLayout
}

// ComputeFile loads a declaration document and computes every type it
// declares, in declaration order. opts override the document's machine
// and enum policy.
func ComputeFile(ctx context.Context, path string, opts ...layout.Option) ([]*layout.Result, error) {
	doc, err := decl.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Engine(opts...).ComputeAll(ctx, doc.Types)
}
