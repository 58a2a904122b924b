// Package field describes fields as they are found in a dIO wire stream.
//
// A FieldDescription is one node of a tree that mirrors the nested structure of a
// stream: its name, name hash, DataType, array dimensions, payload position and size,
// parent and children. WireDataFieldDescription is the implementation built while
// parsing a stream; the tree can be built without any knowledge of the Go type the
// data was written from, which is what makes schema discovery possible.
//
// The reflection-side counterpart (one node per field of a Go struct) lives in the
// codec package and implements the same interface, so both trees can be matched
// against each other by name hash and name.
package field
