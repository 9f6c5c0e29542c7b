// Package graphdoc reads and writes symbol graph documents.
//
// A document describes declarations, their properties and the external types
// they reference, independent of any source language. Property types are
// written as type expressions such as List<Customer>, int[] or Money?.
// YAML documents keep node positions so diagnostics point into the file and
// marker fixes can be applied; JSON and msgpack documents carry no positions.
package graphdoc
