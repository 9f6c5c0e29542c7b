// Package gosrc builds a symbol graph from Go packages.
//
// Markers are directive comments in the doc comment of a type or a field:
//
//	//eq:equatable
//	type Order struct {
//		//eq:ordered
//		Items []Item
//	}
//
// Mapping to the symbol model:
//   - every top-level struct type is a declaration;
//   - named fields are properties, exported ones public, the rest private;
//   - the first embedded struct is the base declaration, embedded fields are
//     never properties;
//   - *T is a nullable wrapper around T;
//   - []T and named slices are builtin.slice, map[K]V and named maps are
//     builtin.map, an unnamed [N]T is an array while named array types are
//     opaque values;
//   - named integer or string types with package-level constants are enums.
//
// Types from packages outside the load set become stub declarations whose
// markers come from Options.External (analysis facts, for example).
package gosrc
