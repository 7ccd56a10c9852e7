// Package decl loads C type declarations from YAML documents.
//
// A document names the target machine, the enum policy, the types and the
// variables to lay out:
//
//	machine: linux64
//	policy: gcc
//	types:
//	  - struct: s
//	    packed: true
//	    members:
//	      - {name: first, type: unsigned int, bits: 2, aligned: 2}
//	      - {name: second, type: unsigned int, bits: 2, aligned: 2}
//	  - enum: e
//	    enumerators:
//	      - {name: low, value: -1}
//	      - next
//	variables:
//	  - {name: v, type: struct s, aligned: 8}
//
// Type references are scalar spellings, "struct tag", "union tag",
// "enum tag", typedef names, "T[n]" arrays and "T *" pointers. A member may
// define its type inline under def. aligned takes a power of two, or true
// for the machine's biggest alignment.
package decl
