// Package clayout computes C object layouts following the GCC ABI.
//
// Given declarations of structs, unions, enums, arrays and typedefs with
// their packed and aligned attributes, the library reports sizeof and
// _Alignof for every type and variable, the byte and bit offset of every
// member, and the underlying integer type the compiler selects for each
// enum.
//
// # Architecture Overview
//
//	clayout/             Root package with ComputeFile and the Object interface
//	├── ctype/           C type graph, scalar kinds and target machines
//	├── layout/          Layout engine: aggregates, arrays, typedefs, variables
//	├── enum/            Enum underlying-type selection and value punning
//	├── storage/         Byte images of laid-out objects
//	├── decl/            YAML declaration documents
//	├── report/          PRINT/PRINTM style output
//	├── errors/          Structured error types
//	└── cmd/clayout/     Command line and interactive browser
//
// # Quick Start
//
//	s := ctype.Struct("s", ctype.Attributes{},
//	    ctype.BitField("first", ctype.NewScalar(ctype.UInt), 23),
//	    ctype.BitField("second", ctype.NewScalar(ctype.UInt), 23),
//	)
//
//	eng := layout.New()
//	r, err := eng.Compute(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(r.Size, r.Align) // 8 4
//
// Or from a declaration document:
//
//	results, err := clayout.ComputeFile(ctx, "decls.yaml")
//
// # Thread Safety
//
// Engine and Resolver are safe for concurrent use. Results are immutable
// once returned and shared between callers. storage.Image is not safe for
// concurrent mutation.
package clayout
